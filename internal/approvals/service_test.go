package approvals

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/guards"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

type mockGuardStore struct {
	byID map[int64]*guards.Guard
}

func (m *mockGuardStore) FindByID(_ context.Context, id int64) (*guards.Guard, error) {
	g, ok := m.byID[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *mockGuardStore) ListFlagged(_ context.Context, companyID int64) ([]guards.Guard, error) {
	var out []guards.Guard
	for _, g := range m.byID {
		if (companyID == 0 || g.CompanyID == companyID) && g.RequiresAdminApproval {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockGuardStore) Approve(_ context.Context, id int64) (*guards.Guard, error) {
	g, ok := m.byID[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	g.RequiresAdminApproval = false
	g.LoginLocationLat = nil
	g.LoginLocationLng = nil
	cp := *g
	return &cp, nil
}

type mockAuditor struct {
	entries []shared.AuditLog
}

func (m *mockAuditor) Record(_ context.Context, log shared.AuditLog) error {
	m.entries = append(m.entries, log)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

func flaggedGuard() *guards.Guard {
	return &guards.Guard{
		ID: 1, UserID: 7, CompanyID: 3, Name: "Jordan",
		LoginLocationLat: ptr(34.0522), LoginLocationLng: ptr(-118.2437),
		RequiresAdminApproval: true,
		ApprovalReason:        "Moved 2.00 miles away from login location",
	}
}

func TestApproveClearsFlagAndBaseline(t *testing.T) {
	store := &mockGuardStore{byID: map[int64]*guards.Guard{1: flaggedGuard()}}
	auditor := &mockAuditor{}
	svc := NewService(testLogger(), store, auditor)

	approved, err := svc.Approve(context.Background(), 99, 1, 3)
	require.NoError(t, err)
	assert.False(t, approved.RequiresAdminApproval)
	assert.Nil(t, approved.LoginLocationLat)
	assert.Nil(t, approved.LoginLocationLng)
	// The reason stays for history.
	assert.NotEmpty(t, approved.ApprovalReason)

	require.Len(t, auditor.entries, 1)
	entry := auditor.entries[0]
	assert.Equal(t, int64(99), entry.ActorID)
	assert.Equal(t, "approve", entry.Action)
	assert.Equal(t, "guard", entry.Entity)
	assert.Equal(t, "1", entry.EntityID)
	assert.Equal(t, "Moved 2.00 miles away from login location", entry.Meta["reason"])
}

func TestApproveOtherCompanyIsNotFound(t *testing.T) {
	store := &mockGuardStore{byID: map[int64]*guards.Guard{1: flaggedGuard()}}
	svc := NewService(testLogger(), store, nil)

	_, err := svc.Approve(context.Background(), 99, 1, 5)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.True(t, store.byID[1].RequiresAdminApproval)
}

func TestApprovePlatformAdminUnscoped(t *testing.T) {
	store := &mockGuardStore{byID: map[int64]*guards.Guard{1: flaggedGuard()}}
	svc := NewService(testLogger(), store, nil)

	approved, err := svc.Approve(context.Background(), 99, 1, 0)
	require.NoError(t, err)
	assert.False(t, approved.RequiresAdminApproval)
}

func TestApproveUnknownGuard(t *testing.T) {
	svc := NewService(testLogger(), &mockGuardStore{byID: map[int64]*guards.Guard{}}, nil)

	_, err := svc.Approve(context.Background(), 99, 1, 0)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListFlagged(t *testing.T) {
	clean := &guards.Guard{ID: 2, UserID: 8, CompanyID: 3, Name: "Sam"}
	store := &mockGuardStore{byID: map[int64]*guards.Guard{1: flaggedGuard(), 2: clean}}
	svc := NewService(testLogger(), store, nil)

	flagged, err := svc.ListFlagged(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, int64(1), flagged[0].ID)
}

func TestListFlaggedUnscopedSpansCompanies(t *testing.T) {
	other := flaggedGuard()
	other.ID = 3
	other.UserID = 9
	other.CompanyID = 5
	store := &mockGuardStore{byID: map[int64]*guards.Guard{1: flaggedGuard(), 3: other}}
	svc := NewService(testLogger(), store, nil)

	flagged, err := svc.ListFlagged(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, flagged, 2)
}
