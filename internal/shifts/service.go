package shifts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/geofence"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

// RepositoryPort abstracts shift persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Shift, error)
	ListByGuard(ctx context.Context, guardID int64, limit int) ([]Shift, error)
	ListByProperty(ctx context.Context, propertyID int64, limit int) ([]Shift, error)
	Create(ctx context.Context, s Shift) (*Shift, error)
	ClockIn(ctx context.Context, id int64, at time.Time, lat, lng float64) (*Shift, error)
	ClockOut(ctx context.Context, id int64, at time.Time) (*Shift, error)
	RecordScan(ctx context.Context, s Scan) (*Scan, error)
	ListScans(ctx context.Context, shiftID int64) ([]Scan, error)
}

// PropertyLocator resolves the site a shift belongs to.
type PropertyLocator interface {
	Location(ctx context.Context, propertyID int64) (lat, lng float64, companyID int64, err error)
}

// CheckpointResolver looks up a checkpoint by its scan code within a property.
type CheckpointResolver interface {
	Resolve(ctx context.Context, propertyID int64, code string) (checkpointID int64, err error)
}

// Service holds shift business rules: clock-in must happen on site, scans
// must reference checkpoints of the shift's property.
type Service struct {
	repo        RepositoryPort
	properties  PropertyLocator
	checkpoints CheckpointResolver
	radiusMiles float64
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a service. radiusMiles bounds how far from the
// property a guard may clock in.
func NewService(repo RepositoryPort, properties PropertyLocator, checkpoints CheckpointResolver, radiusMiles float64, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		properties:  properties,
		checkpoints: checkpoints,
		radiusMiles: radiusMiles,
		logger:      logger,
		now:         time.Now,
	}
}

// Get returns a shift scoped to companyID when companyID > 0.
func (s *Service) Get(ctx context.Context, id, companyID int64) (*Shift, error) {
	shift, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.inCompany(ctx, shift, companyID); err != nil {
		return nil, err
	}
	return shift, nil
}

// ListByGuard returns a guard's recent shifts.
func (s *Service) ListByGuard(ctx context.Context, guardID int64, limit int) ([]Shift, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByGuard(ctx, guardID, limit)
}

// ListByProperty returns a property's recent shifts.
func (s *Service) ListByProperty(ctx context.Context, propertyID int64, limit int) ([]Shift, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByProperty(ctx, propertyID, limit)
}

// Create schedules a shift after validating times and company scope.
func (s *Service) Create(ctx context.Context, shift Shift, companyID int64) (*Shift, error) {
	if shift.GuardID <= 0 || shift.PropertyID <= 0 {
		return nil, fmt.Errorf("%w: guard and property are required", httpx.ErrValidation)
	}
	if !shift.ScheduledEnd.After(shift.ScheduledStart) {
		return nil, fmt.Errorf("%w: shift must end after it starts", httpx.ErrValidation)
	}
	_, _, propCompany, err := s.properties.Location(ctx, shift.PropertyID)
	if err != nil {
		return nil, err
	}
	if companyID > 0 && propCompany != companyID {
		return nil, httpx.ErrForbidden
	}
	return s.repo.Create(ctx, shift)
}

// ClockIn activates a shift after checking the guard is at the property.
func (s *Service) ClockIn(ctx context.Context, id, guardID int64, lat, lng float64) (*Shift, error) {
	shift, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift.GuardID != guardID {
		return nil, httpx.ErrForbidden
	}
	if shift.Status != StatusScheduled {
		return nil, fmt.Errorf("%w: shift is %s", httpx.ErrValidation, shift.Status)
	}
	propLat, propLng, _, err := s.properties.Location(ctx, shift.PropertyID)
	if err != nil {
		return nil, err
	}
	distance := geofence.DistanceMiles(lat, lng, propLat, propLng)
	if distance > s.radiusMiles {
		s.logger.Warn("clock-in rejected off site", "shift_id", id, "guard_id", guardID, "distance_miles", distance)
		return nil, fmt.Errorf("%w: you are %.2f miles from the property", httpx.ErrValidation, distance)
	}
	return s.repo.ClockIn(ctx, id, s.now().UTC(), lat, lng)
}

// ClockOut completes an active shift.
func (s *Service) ClockOut(ctx context.Context, id, guardID int64) (*Shift, error) {
	shift, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift.GuardID != guardID {
		return nil, httpx.ErrForbidden
	}
	if shift.Status != StatusActive {
		return nil, fmt.Errorf("%w: shift is %s", httpx.ErrValidation, shift.Status)
	}
	return s.repo.ClockOut(ctx, id, s.now().UTC())
}

// RecordScan logs a checkpoint scan on an active shift. The scan code must
// resolve to a checkpoint of the shift's property.
func (s *Service) RecordScan(ctx context.Context, shiftID, guardID int64, code string, lat, lng float64) (*Scan, error) {
	shift, err := s.repo.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.GuardID != guardID {
		return nil, httpx.ErrForbidden
	}
	if shift.Status != StatusActive {
		return nil, fmt.Errorf("%w: shift is %s", httpx.ErrValidation, shift.Status)
	}
	checkpointID, err := s.checkpoints.Resolve(ctx, shift.PropertyID, code)
	if err != nil {
		return nil, err
	}
	return s.repo.RecordScan(ctx, Scan{
		ShiftID:      shiftID,
		CheckpointID: checkpointID,
		ScannedAt:    s.now().UTC(),
		Lat:          lat,
		Lng:          lng,
	})
}

// ListScans returns the scans of a shift scoped to companyID.
func (s *Service) ListScans(ctx context.Context, shiftID, companyID int64) ([]Scan, error) {
	shift, err := s.repo.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if err := s.inCompany(ctx, shift, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListScans(ctx, shiftID)
}

func (s *Service) inCompany(ctx context.Context, shift *Shift, companyID int64) error {
	if companyID <= 0 {
		return nil
	}
	_, _, propCompany, err := s.properties.Location(ctx, shift.PropertyID)
	if err != nil {
		return err
	}
	if propCompany != companyID {
		return httpx.ErrForbidden
	}
	return nil
}
