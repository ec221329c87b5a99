package incidents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// RepositoryPort abstracts incident persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id uuid.UUID) (*Incident, error)
	List(ctx context.Context, companyID int64, status string, limit, offset int) ([]Incident, int, error)
	ListByGuard(ctx context.Context, guardID int64, limit int) ([]Incident, error)
	Create(ctx context.Context, inc Incident) (*Incident, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Incident, error)
	CompanyOf(ctx context.Context, id uuid.UUID) (int64, error)
}

// Auditor records incident review actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service holds incident report business rules.
type Service struct {
	repo    RepositoryPort
	auditor Auditor
	logger  *slog.Logger
}

// NewService constructs a service.
func NewService(repo RepositoryPort, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, logger: logger}
}

// Report files a new incident on behalf of a guard.
func (s *Service) Report(ctx context.Context, inc Incident) (*Incident, error) {
	if inc.GuardID <= 0 || inc.PropertyID <= 0 {
		return nil, fmt.Errorf("%w: guard and property are required", httpx.ErrValidation)
	}
	if inc.Title == "" {
		return nil, fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if !ValidSeverity(inc.Severity) {
		return nil, fmt.Errorf("%w: unknown severity %q", httpx.ErrValidation, inc.Severity)
	}
	if len(inc.PhotoKeys) > 10 {
		return nil, fmt.Errorf("%w: at most 10 photos per report", httpx.ErrValidation)
	}
	inc.ID = uuid.New()
	return s.repo.Create(ctx, inc)
}

// Get returns an incident scoped to companyID when companyID > 0.
func (s *Service) Get(ctx context.Context, id uuid.UUID, companyID int64) (*Incident, error) {
	if err := s.scope(ctx, id, companyID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// List returns a page of incidents for review.
func (s *Service) List(ctx context.Context, companyID int64, status string, limit, offset int) ([]Incident, int, error) {
	if status != "" && status != StatusOpen && status != StatusReviewed && status != StatusClosed {
		return nil, 0, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, companyID, status, limit, offset)
}

// ListByGuard returns a guard's own reports.
func (s *Service) ListByGuard(ctx context.Context, guardID int64, limit int) ([]Incident, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByGuard(ctx, guardID, limit)
}

// Transition moves a report to a new status and records who did it.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to string, actor *shared.Identity, companyID int64) (*Incident, error) {
	if err := s.scope(ctx, id, companyID); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: cannot move %s report to %s", httpx.ErrValidation, current.Status, to)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	if s.auditor != nil {
		if err := s.auditor.Record(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "incident." + to,
			Entity:   "incident",
			EntityID: id.String(),
			Meta:     map[string]any{"from": current.Status, "severity": current.Severity},
		}); err != nil {
			s.logger.Warn("audit incident transition", "incident_id", id, "error", err)
		}
	}
	return updated, nil
}

func (s *Service) scope(ctx context.Context, id uuid.UUID, companyID int64) error {
	if companyID <= 0 {
		return nil
	}
	owner, err := s.repo.CompanyOf(ctx, id)
	if err != nil {
		return err
	}
	if owner != companyID {
		return httpx.ErrForbidden
	}
	return nil
}
