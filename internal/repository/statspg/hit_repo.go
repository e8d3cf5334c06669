package statspg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"eventboard/internal/domain"
)

type hitRepository struct {
	db *DB
}

func NewHitRepository(db *DB) domain.HitRepository {
	return &hitRepository{db: db}
}

func (r *hitRepository) Create(ctx context.Context, hit *domain.Hit) error {
	query := `
		INSERT INTO hits (app, uri, ip, ts)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := r.db.Pool.QueryRow(ctx, query, hit.App, hit.URI, hit.IP, hit.Timestamp).Scan(&hit.ID); err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

func (r *hitRepository) AggregateAll(ctx context.Context, start, end time.Time, unique bool) ([]domain.ViewStats, error) {
	query := fmt.Sprintf(`
		SELECT app, uri, %s::bigint
		FROM hits
		WHERE ts BETWEEN $1 AND $2
		GROUP BY app, uri
		ORDER BY 3 DESC
	`, countExpr(unique))
	rows, err := r.db.Pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return collectStats(rows)
}

func (r *hitRepository) AggregateByURIs(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	query := fmt.Sprintf(`
		SELECT app, uri, %s::bigint
		FROM hits
		WHERE ts BETWEEN $1 AND $2 AND uri = ANY($3)
		GROUP BY app, uri
		ORDER BY 3 DESC
	`, countExpr(unique))
	rows, err := r.db.Pool.Query(ctx, query, start, end, uris)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return collectStats(rows)
}

// countExpr selects between counting rows and counting distinct client IPs.
func countExpr(unique bool) string {
	if unique {
		return "COUNT(DISTINCT ip)"
	}
	return "COUNT(*)"
}

func collectStats(rows pgx.Rows) ([]domain.ViewStats, error) {
	defer rows.Close()
	stats := make([]domain.ViewStats, 0)
	for rows.Next() {
		var s domain.ViewStats
		if err := rows.Scan(&s.App, &s.URI, &s.Hits); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
