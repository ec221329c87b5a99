package geofence

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/guards"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/observability"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// ProfileStore is the slice of guard persistence the evaluator needs.
type ProfileStore interface {
	FindByUserID(ctx context.Context, userID int64) (*guards.Guard, error)
	SetBaseline(ctx context.Context, guardID int64, lat, lng float64) error
	Flag(ctx context.Context, guardID int64, reason string) error
}

// SessionRevoker performs the server-side global sign-out.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID int64) (int, error)
}

// AlertQueue notifies company admins about a flagged guard. Delivery is
// best effort and never blocks the evaluation response.
type AlertQueue interface {
	EnqueueViolationAlert(ctx context.Context, guard *guards.Guard, reason string) error
}

// Service is the server-side geofence policy evaluator.
type Service struct {
	logger    *slog.Logger
	profiles  ProfileStore
	sessions  SessionRevoker
	alerts    AlertQueue
	metrics   *observability.Metrics
	threshold float64
}

// NewService constructs the evaluator. Threshold is the violation distance in
// miles; alerts and metrics may be nil.
func NewService(logger *slog.Logger, profiles ProfileStore, sessions SessionRevoker, alerts AlertQueue, metrics *observability.Metrics, thresholdMiles float64) *Service {
	return &Service{
		logger:    logger,
		profiles:  profiles,
		sessions:  sessions,
		alerts:    alerts,
		metrics:   metrics,
		threshold: thresholdMiles,
	}
}

// Evaluate compares the caller's current position against their login
// baseline. The flag write and the global sign-out both happen before this
// returns, so a client never observes a violation the server has not
// persisted.
func (s *Service) Evaluate(ctx context.Context, ident *shared.Identity, lat, lng float64) (*CheckResult, error) {
	if err := validateCoords(lat, lng); err != nil {
		return nil, err
	}

	if ident.Role != shared.RoleGuard {
		s.metrics.ObserveGeofenceCheck(OutcomeExempt)
		return &CheckResult{WithinRange: true}, nil
	}

	guard, err := s.profiles.FindByUserID(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	// An already-flagged guard stays flagged until explicit admin action;
	// no distance recompute.
	if guard.RequiresAdminApproval {
		s.metrics.ObserveGeofenceCheck(OutcomeFlagged)
		return &CheckResult{WithinRange: false, RequiresApproval: true}, nil
	}

	if !guard.HasBaseline() {
		s.metrics.ObserveGeofenceCheck(OutcomeNoBaseline)
		return &CheckResult{WithinRange: true, Message: MsgNoBaseline}, nil
	}

	distance := DistanceMiles(*guard.LoginLocationLat, *guard.LoginLocationLng, lat, lng)
	rendered := fmt.Sprintf("%.2f", distance)

	if distance <= s.threshold {
		s.metrics.ObserveGeofenceCheck(OutcomePass)
		return &CheckResult{WithinRange: true, Distance: rendered}, nil
	}

	reason := fmt.Sprintf("Moved %.2f miles away from login location", distance)
	if err := s.profiles.Flag(ctx, guard.ID, reason); err != nil {
		s.logger.Error("flag guard after violation", slog.Int64("guard_id", guard.ID), slog.Any("error", err))
		return nil, err
	}

	// Sign-out failure is non-fatal: the flag already denies trust.
	if revoked, err := s.sessions.RevokeAll(ctx, guard.UserID); err != nil {
		s.logger.Error("revoke sessions after violation", slog.Int64("guard_id", guard.ID), slog.Any("error", err))
	} else {
		s.logger.Info("guard flagged and signed out",
			slog.Int64("guard_id", guard.ID),
			slog.String("distance_miles", rendered),
			slog.Int("sessions_revoked", revoked))
	}

	if s.alerts != nil {
		if err := s.alerts.EnqueueViolationAlert(ctx, guard, reason); err != nil {
			s.logger.Warn("enqueue violation alert", slog.Int64("guard_id", guard.ID), slog.Any("error", err))
		}
	}

	s.metrics.ObserveGeofenceCheck(OutcomeViolate)
	s.metrics.ObserveForcedLogout()

	return &CheckResult{WithinRange: false, RequiresApproval: true, Distance: rendered}, nil
}

// SetBaseline records the login location. Non-guard callers are a no-op; for
// guards the write is an unconditional overwrite, relied on to fire only when
// the evaluator has reported no stored baseline.
func (s *Service) SetBaseline(ctx context.Context, ident *shared.Identity, lat, lng float64) error {
	if err := validateCoords(lat, lng); err != nil {
		return err
	}
	if ident.Role != shared.RoleGuard {
		return nil
	}
	guard, err := s.profiles.FindByUserID(ctx, ident.UserID)
	if err != nil {
		return err
	}
	if err := s.profiles.SetBaseline(ctx, guard.ID, lat, lng); err != nil {
		return err
	}
	s.logger.Info("baseline recorded", slog.Int64("guard_id", guard.ID))
	return nil
}

func validateCoords(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("%w: coordinates must be finite numbers", httpx.ErrValidation)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: coordinates out of range", httpx.ErrValidation)
	}
	return nil
}
