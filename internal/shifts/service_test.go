package shifts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

type mockRepo struct {
	shifts map[int64]*Shift
	scans  []Scan
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{shifts: map[int64]*Shift{}, nextID: 1}
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) ListByGuard(_ context.Context, guardID int64, _ int) ([]Shift, error) {
	var out []Shift
	for _, s := range m.shifts {
		if s.GuardID == guardID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByProperty(_ context.Context, propertyID int64, _ int) ([]Shift, error) {
	var out []Shift
	for _, s := range m.shifts {
		if s.PropertyID == propertyID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockRepo) Create(_ context.Context, s Shift) (*Shift, error) {
	s.ID = m.nextID
	s.Status = StatusScheduled
	m.nextID++
	m.shifts[s.ID] = &s
	cp := s
	return &cp, nil
}

func (m *mockRepo) ClockIn(_ context.Context, id int64, at time.Time, lat, lng float64) (*Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	s.ClockInAt = &at
	s.ClockInLat = &lat
	s.ClockInLng = &lng
	s.Status = StatusActive
	cp := *s
	return &cp, nil
}

func (m *mockRepo) ClockOut(_ context.Context, id int64, at time.Time) (*Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	s.ClockOutAt = &at
	s.Status = StatusCompleted
	cp := *s
	return &cp, nil
}

func (m *mockRepo) RecordScan(_ context.Context, s Scan) (*Scan, error) {
	s.ID = int64(len(m.scans) + 1)
	m.scans = append(m.scans, s)
	cp := s
	return &cp, nil
}

func (m *mockRepo) ListScans(_ context.Context, shiftID int64) ([]Scan, error) {
	var out []Scan
	for _, s := range m.scans {
		if s.ShiftID == shiftID {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockLocator struct {
	lat, lng  float64
	companyID int64
	err       error
}

func (m mockLocator) Location(context.Context, int64) (float64, float64, int64, error) {
	return m.lat, m.lng, m.companyID, m.err
}

type mockResolver struct {
	ids map[string]int64
}

func (m mockResolver) Resolve(_ context.Context, _ int64, code string) (int64, error) {
	id, ok := m.ids[code]
	if !ok {
		return 0, httpx.ErrNotFound
	}
	return id, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *mockRepo, loc mockLocator, res mockResolver) *Service {
	svc := NewService(repo, loc, res, 0.25, testLogger())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func scheduledShift(repo *mockRepo, guardID, propertyID int64) *Shift {
	s, _ := repo.Create(context.Background(), Shift{
		GuardID:        guardID,
		PropertyID:     propertyID,
		ScheduledStart: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC),
	})
	return s
}

func TestClockInOnSite(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{lat: 34.0522, lng: -118.2437, companyID: 1}, mockResolver{})
	shift := scheduledShift(repo, 7, 3)

	got, err := svc.ClockIn(context.Background(), shift.ID, 7, 34.0525, -118.2437)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
	require.NotNil(t, got.ClockInLat)
	assert.InDelta(t, 34.0525, *got.ClockInLat, 1e-9)
}

func TestClockInOffSite(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{lat: 34.0522, lng: -118.2437, companyID: 1}, mockResolver{})
	shift := scheduledShift(repo, 7, 3)

	// Roughly two miles north of the property.
	_, err := svc.ClockIn(context.Background(), shift.ID, 7, 34.0812, -118.2437)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Equal(t, StatusScheduled, repo.shifts[shift.ID].Status)
}

func TestClockInWrongGuard(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{lat: 34.0522, lng: -118.2437}, mockResolver{})
	shift := scheduledShift(repo, 7, 3)

	_, err := svc.ClockIn(context.Background(), shift.ID, 8, 34.0522, -118.2437)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestClockInTwice(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{lat: 34.0522, lng: -118.2437}, mockResolver{})
	shift := scheduledShift(repo, 7, 3)

	_, err := svc.ClockIn(context.Background(), shift.ID, 7, 34.0522, -118.2437)
	require.NoError(t, err)
	_, err = svc.ClockIn(context.Background(), shift.ID, 7, 34.0522, -118.2437)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestClockOutRequiresActive(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{lat: 34.0522, lng: -118.2437}, mockResolver{})
	shift := scheduledShift(repo, 7, 3)

	_, err := svc.ClockOut(context.Background(), shift.ID, 7)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.ClockIn(context.Background(), shift.ID, 7, 34.0522, -118.2437)
	require.NoError(t, err)

	got, err := svc.ClockOut(context.Background(), shift.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.NotNil(t, got.ClockOutAt)
}

func TestRecordScan(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{lat: 34.0522, lng: -118.2437}, mockResolver{ids: map[string]int64{"CP-01": 42}})
	shift := scheduledShift(repo, 7, 3)

	_, err := svc.ClockIn(context.Background(), shift.ID, 7, 34.0522, -118.2437)
	require.NoError(t, err)

	scan, err := svc.RecordScan(context.Background(), shift.ID, 7, "CP-01", 34.0523, -118.2436)
	require.NoError(t, err)
	assert.Equal(t, int64(42), scan.CheckpointID)

	_, err = svc.RecordScan(context.Background(), shift.ID, 7, "CP-99", 34.0523, -118.2436)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestRecordScanInactiveShift(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{lat: 34.0522, lng: -118.2437}, mockResolver{ids: map[string]int64{"CP-01": 42}})
	shift := scheduledShift(repo, 7, 3)

	_, err := svc.RecordScan(context.Background(), shift.ID, 7, "CP-01", 34.0523, -118.2436)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateValidatesWindow(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{companyID: 1}, mockResolver{})

	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), Shift{GuardID: 1, PropertyID: 1, ScheduledStart: start, ScheduledEnd: start}, 0)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateScopesCompany(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, mockLocator{companyID: 2}, mockResolver{})

	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	shift := Shift{GuardID: 1, PropertyID: 1, ScheduledStart: start, ScheduledEnd: start.Add(8 * time.Hour)}

	_, err := svc.Create(context.Background(), shift, 1)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	created, err := svc.Create(context.Background(), shift, 2)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, created.Status)
}

func TestGetPropagatesLocatorError(t *testing.T) {
	repo := newMockRepo()
	boom := errors.New("boom")
	svc := newTestService(repo, mockLocator{err: boom}, mockResolver{})
	shift := scheduledShift(repo, 7, 3)

	_, err := svc.Get(context.Background(), shift.ID, 1)
	assert.ErrorIs(t, err, boom)
}
