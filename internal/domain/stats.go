package domain

import (
	"context"
	"time"
)

// StatsTimeLayout is the timestamp format on the stats HTTP surface.
const StatsTimeLayout = "2006-01-02 15:04:05"

// Hit is one recorded access against a URI. Append-only.
// swagger:model Hit
type Hit struct {
	ID        int64     `json:"id"`
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

// ViewStats is an aggregated view count for one (app, uri) pair.
// swagger:model ViewStats
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// HitRepository defines the interface for hit storage and aggregation.
type HitRepository interface {
	Create(ctx context.Context, hit *Hit) error
	// AggregateAll counts hits per (app, uri) in the window, ordered by count
	// descending. With unique, distinct IPs are counted instead of rows.
	AggregateAll(ctx context.Context, start, end time.Time, unique bool) ([]ViewStats, error)
	// AggregateByURIs is AggregateAll restricted to the given URIs.
	AggregateByURIs(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}

// StatsService defines the analytics operations exposed by the stats service.
type StatsService interface {
	RecordHit(ctx context.Context, hit *Hit) error
	ViewStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}

// StatsClient is the main service's port to the stats service.
type StatsClient interface {
	RecordHit(ctx context.Context, app, uri, ip string, timestamp time.Time) error
	ViewCounts(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}
