// Package approvals surfaces flagged guards to admins and clears the flag.
package approvals

import (
	"context"
	"log/slog"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/guards"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// GuardStore is the slice of guard persistence the workflow needs.
type GuardStore interface {
	FindByID(ctx context.Context, id int64) (*guards.Guard, error)
	ListFlagged(ctx context.Context, companyID int64) ([]guards.Guard, error)
	Approve(ctx context.Context, id int64) (*guards.Guard, error)
}

// Auditor records approval decisions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements the admin approval workflow.
type Service struct {
	logger *slog.Logger
	guards GuardStore
	audit  Auditor
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, guardStore GuardStore, audit Auditor) *Service {
	return &Service{logger: logger, guards: guardStore, audit: audit}
}

// ListFlagged returns guards awaiting approval for a company.
func (s *Service) ListFlagged(ctx context.Context, companyID int64) ([]guards.Guard, error) {
	return s.guards.ListFlagged(ctx, companyID)
}

// Approve clears the approval flag. It is a trust decision: no distance
// recheck is performed, and the stored approval reason is retained for
// history. The baseline is cleared so the guard's next login records a fresh
// one.
func (s *Service) Approve(ctx context.Context, actorID, guardID, companyID int64) (*guards.Guard, error) {
	guard, err := s.guards.FindByID(ctx, guardID)
	if err != nil {
		return nil, err
	}
	if companyID > 0 && guard.CompanyID != companyID {
		return nil, httpx.ErrNotFound
	}

	approved, err := s.guards.Approve(ctx, guardID)
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "approve",
			Entity:   "guard",
			EntityID: formatID(guardID),
			Meta:     map[string]any{"reason": guard.ApprovalReason},
		}); err != nil {
			s.logger.Warn("record approval audit", slog.Int64("guard_id", guardID), slog.Any("error", err))
		}
	}
	return approved, nil
}
