package geofence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/guards"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

type mockProfiles struct {
	byUser  map[int64]*guards.Guard
	flagErr error
}

func newMockProfiles(gs ...*guards.Guard) *mockProfiles {
	m := &mockProfiles{byUser: map[int64]*guards.Guard{}}
	for _, g := range gs {
		m.byUser[g.UserID] = g
	}
	return m
}

func (m *mockProfiles) FindByUserID(_ context.Context, userID int64) (*guards.Guard, error) {
	g, ok := m.byUser[userID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *mockProfiles) SetBaseline(_ context.Context, guardID int64, lat, lng float64) error {
	for _, g := range m.byUser {
		if g.ID == guardID {
			g.LoginLocationLat = &lat
			g.LoginLocationLng = &lng
			return nil
		}
	}
	return httpx.ErrNotFound
}

func (m *mockProfiles) Flag(_ context.Context, guardID int64, reason string) error {
	if m.flagErr != nil {
		return m.flagErr
	}
	for _, g := range m.byUser {
		if g.ID == guardID {
			g.RequiresAdminApproval = true
			g.ApprovalReason = reason
			return nil
		}
	}
	return httpx.ErrNotFound
}

type mockRevoker struct {
	revoked map[int64]int
	err     error
}

func (m *mockRevoker) RevokeAll(_ context.Context, userID int64) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.revoked == nil {
		m.revoked = map[int64]int{}
	}
	m.revoked[userID]++
	return 2, nil
}

type mockAlerts struct {
	sent []string
}

func (m *mockAlerts) EnqueueViolationAlert(_ context.Context, _ *guards.Guard, reason string) error {
	m.sent = append(m.sent, reason)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

func guardIdentity(userID int64) *shared.Identity {
	return &shared.Identity{UserID: userID, Role: shared.RoleGuard, CompanyID: 1}
}

func TestEvaluateNonGuardExempt(t *testing.T) {
	svc := NewService(testLogger(), newMockProfiles(), &mockRevoker{}, nil, nil, 1.0)

	res, err := svc.Evaluate(context.Background(), &shared.Identity{UserID: 9, Role: shared.RoleCompanyAdmin}, 34.0522, -118.2437)
	require.NoError(t, err)
	assert.True(t, res.WithinRange)
	assert.Empty(t, res.Distance)
}

func TestEvaluateNoBaseline(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{ID: 1, UserID: 7, CompanyID: 1})
	svc := NewService(testLogger(), profiles, &mockRevoker{}, nil, nil, 1.0)

	res, err := svc.Evaluate(context.Background(), guardIdentity(7), 34.0522, -118.2437)
	require.NoError(t, err)
	assert.True(t, res.WithinRange)
	assert.Equal(t, MsgNoBaseline, res.Message)
}

func TestEvaluateWithinThreshold(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{
		ID: 1, UserID: 7, CompanyID: 1,
		LoginLocationLat: ptr(34.0522), LoginLocationLng: ptr(-118.2437),
	})
	revoker := &mockRevoker{}
	svc := NewService(testLogger(), profiles, revoker, nil, nil, 1.0)

	res, err := svc.Evaluate(context.Background(), guardIdentity(7), 34.0530, -118.2437)
	require.NoError(t, err)
	assert.True(t, res.WithinRange)
	assert.Equal(t, "0.06", res.Distance)
	assert.Empty(t, revoker.revoked)
	assert.False(t, profiles.byUser[7].RequiresAdminApproval)
}

func TestEvaluateViolationFlagsAndSignsOut(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{
		ID: 1, UserID: 7, CompanyID: 1, Name: "Jordan",
		LoginLocationLat: ptr(34.0522), LoginLocationLng: ptr(-118.2437),
	})
	revoker := &mockRevoker{}
	alerts := &mockAlerts{}
	svc := NewService(testLogger(), profiles, revoker, alerts, nil, 1.0)

	// Roughly two miles away.
	res, err := svc.Evaluate(context.Background(), guardIdentity(7), 34.0812, -118.2437)
	require.NoError(t, err)
	assert.False(t, res.WithinRange)
	assert.True(t, res.RequiresApproval)
	assert.NotEmpty(t, res.Distance)

	g := profiles.byUser[7]
	assert.True(t, g.RequiresAdminApproval)
	assert.Contains(t, g.ApprovalReason, "miles away from login location")
	assert.Equal(t, 1, revoker.revoked[7])
	require.Len(t, alerts.sent, 1)
	assert.Equal(t, g.ApprovalReason, alerts.sent[0])
}

func TestEvaluateFlaggedShortCircuits(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{
		ID: 1, UserID: 7, CompanyID: 1,
		LoginLocationLat: ptr(34.0522), LoginLocationLng: ptr(-118.2437),
		RequiresAdminApproval: true, ApprovalReason: "Moved 2.00 miles away from login location",
	})
	revoker := &mockRevoker{}
	svc := NewService(testLogger(), profiles, revoker, nil, nil, 1.0)

	// Back at the baseline, still flagged.
	res, err := svc.Evaluate(context.Background(), guardIdentity(7), 34.0522, -118.2437)
	require.NoError(t, err)
	assert.False(t, res.WithinRange)
	assert.True(t, res.RequiresApproval)
	assert.Empty(t, res.Distance)
	assert.Empty(t, revoker.revoked)
}

func TestEvaluateFlagFailureIsFatal(t *testing.T) {
	boom := errors.New("db down")
	profiles := newMockProfiles(&guards.Guard{
		ID: 1, UserID: 7, CompanyID: 1,
		LoginLocationLat: ptr(34.0522), LoginLocationLng: ptr(-118.2437),
	})
	profiles.flagErr = boom
	revoker := &mockRevoker{}
	svc := NewService(testLogger(), profiles, revoker, nil, nil, 1.0)

	_, err := svc.Evaluate(context.Background(), guardIdentity(7), 34.0812, -118.2437)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, revoker.revoked)
}

func TestEvaluateRevokeFailureIsNotFatal(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{
		ID: 1, UserID: 7, CompanyID: 1,
		LoginLocationLat: ptr(34.0522), LoginLocationLng: ptr(-118.2437),
	})
	revoker := &mockRevoker{err: errors.New("redis down")}
	svc := NewService(testLogger(), profiles, revoker, nil, nil, 1.0)

	res, err := svc.Evaluate(context.Background(), guardIdentity(7), 34.0812, -118.2437)
	require.NoError(t, err)
	assert.False(t, res.WithinRange)
	assert.True(t, profiles.byUser[7].RequiresAdminApproval)
}

func TestEvaluateRejectsBadCoordinates(t *testing.T) {
	svc := NewService(testLogger(), newMockProfiles(), &mockRevoker{}, nil, nil, 1.0)

	for _, c := range [][2]float64{
		{math.NaN(), 0},
		{0, math.Inf(1)},
		{91, 0},
		{0, -181},
	} {
		_, err := svc.Evaluate(context.Background(), guardIdentity(7), c[0], c[1])
		assert.ErrorIs(t, err, httpx.ErrValidation)
	}
}

func TestSetBaselineThenEvaluate(t *testing.T) {
	profiles := newMockProfiles(&guards.Guard{ID: 1, UserID: 7, CompanyID: 1})
	svc := NewService(testLogger(), profiles, &mockRevoker{}, nil, nil, 1.0)

	require.NoError(t, svc.SetBaseline(context.Background(), guardIdentity(7), 34.0522, -118.2437))

	res, err := svc.Evaluate(context.Background(), guardIdentity(7), 34.0522, -118.2437)
	require.NoError(t, err)
	assert.True(t, res.WithinRange)
	assert.Equal(t, "0.00", res.Distance)
}

func TestSetBaselineNonGuardNoop(t *testing.T) {
	profiles := newMockProfiles()
	svc := NewService(testLogger(), profiles, &mockRevoker{}, nil, nil, 1.0)

	err := svc.SetBaseline(context.Background(), &shared.Identity{UserID: 9, Role: shared.RolePlatformAdmin}, 34.0522, -118.2437)
	assert.NoError(t, err)
}
