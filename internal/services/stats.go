package services

import (
	"context"
	"fmt"
	"time"

	"eventboard/internal/domain"
)

type statsService struct {
	hitRepo        domain.HitRepository
	contextTimeout time.Duration
}

// NewStatsService creates the analytics service.
func NewStatsService(hitRepo domain.HitRepository, timeout time.Duration) domain.StatsService {
	return &statsService{hitRepo: hitRepo, contextTimeout: timeout}
}

func (s *statsService) RecordHit(ctx context.Context, hit *domain.Hit) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if hit.App == "" || hit.URI == "" || hit.IP == "" {
		return domain.Validationf("hit requires app, uri and ip")
	}
	if hit.Timestamp.IsZero() {
		return domain.Validationf("hit requires a timestamp")
	}
	if err := s.hitRepo.Create(ctx, hit); err != nil {
		return fmt.Errorf("create hit: %w", err)
	}
	return nil
}

func (s *statsService) ViewStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if start.After(end) {
		return nil, domain.Validationf("unexpected time interval: start %s, end %s", start, end)
	}

	var (
		stats []domain.ViewStats
		err   error
	)
	if len(uris) == 0 {
		stats, err = s.hitRepo.AggregateAll(ctx, start, end, unique)
	} else {
		stats, err = s.hitRepo.AggregateByURIs(ctx, start, end, uris, unique)
	}
	if err != nil {
		return nil, fmt.Errorf("aggregate hits: %w", err)
	}
	if stats == nil {
		stats = []domain.ViewStats{}
	}
	return stats, nil
}
