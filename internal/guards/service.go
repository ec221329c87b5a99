package guards

import (
	"context"
	"fmt"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

// RepositoryPort defines data access methods for guard profiles.
type RepositoryPort interface {
	FindByID(ctx context.Context, id int64) (*Guard, error)
	FindByUserID(ctx context.Context, userID int64) (*Guard, error)
	FindIDByUserID(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context, companyID int64, limit, offset int) ([]Guard, int, error)
	Create(ctx context.Context, g Guard) (*Guard, error)
	Update(ctx context.Context, id int64, name, phone string) (*Guard, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles guard profile business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns a guard profile by id, scoped to the company when companyID > 0.
func (s *Service) Get(ctx context.Context, id, companyID int64) (*Guard, error) {
	guard, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if companyID > 0 && guard.CompanyID != companyID {
		return nil, httpx.ErrNotFound
	}
	return guard, nil
}

// GetByUserID returns the guard profile for an auth user.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Guard, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// FindIDByUserID resolves the profile id for an auth user.
func (s *Service) FindIDByUserID(ctx context.Context, userID int64) (int64, error) {
	return s.repo.FindIDByUserID(ctx, userID)
}

// List returns guards for a company.
func (s *Service) List(ctx context.Context, companyID int64, limit, offset int) ([]Guard, int, error) {
	if companyID <= 0 {
		return nil, 0, fmt.Errorf("%w: company required", httpx.ErrValidation)
	}
	return s.repo.List(ctx, companyID, limit, offset)
}

// Create registers a new guard profile.
func (s *Service) Create(ctx context.Context, g Guard) (*Guard, error) {
	if g.UserID == 0 || g.CompanyID == 0 || g.Name == "" {
		return nil, fmt.Errorf("%w: user, company and name required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, g)
}

// Update modifies a guard profile, scoped to the company when companyID > 0.
func (s *Service) Update(ctx context.Context, id, companyID int64, name, phone string) (*Guard, error) {
	if _, err := s.Get(ctx, id, companyID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, name, phone)
}

// Delete removes a guard profile, scoped to the company when companyID > 0.
func (s *Service) Delete(ctx context.Context, id, companyID int64) error {
	if _, err := s.Get(ctx, id, companyID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
