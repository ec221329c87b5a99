package overview

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// StatsSource supplies the individual counters that make up a snapshot.
type StatsSource interface {
	CountGuards(ctx context.Context, companyID int64) (int64, error)
	CountFlaggedGuards(ctx context.Context, companyID int64) (int64, error)
	CountActiveShifts(ctx context.Context, companyID int64) (int64, error)
	CountOpenIncidents(ctx context.Context, companyID int64) (int64, error)
	CountProperties(ctx context.Context, companyID int64) (int64, error)
}

// Service assembles dashboard snapshots.
type Service struct {
	stats StatsSource
}

// NewService constructs a Service instance.
func NewService(stats StatsSource) *Service {
	return &Service{stats: stats}
}

// Snapshot loads all counters in parallel. The first failing query cancels
// the rest.
func (s *Service) Snapshot(ctx context.Context, companyID int64) (Snapshot, error) {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.stats.CountGuards(ctx, companyID)
		if err != nil {
			return err
		}
		snap.Guards = n
		return nil
	})

	g.Go(func() error {
		n, err := s.stats.CountFlaggedGuards(ctx, companyID)
		if err != nil {
			return err
		}
		snap.FlaggedGuards = n
		return nil
	})

	g.Go(func() error {
		n, err := s.stats.CountActiveShifts(ctx, companyID)
		if err != nil {
			return err
		}
		snap.ActiveShifts = n
		return nil
	})

	g.Go(func() error {
		n, err := s.stats.CountOpenIncidents(ctx, companyID)
		if err != nil {
			return err
		}
		snap.OpenIncidents = n
		return nil
	})

	g.Go(func() error {
		n, err := s.stats.CountProperties(ctx, companyID)
		if err != nil {
			return err
		}
		snap.Properties = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
