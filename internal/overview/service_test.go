package overview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStats struct {
	mu        sync.Mutex
	guards    int64
	flagged   int64
	active    int64
	open      int64
	props     int64
	shiftsErr error
	scopes    []int64
}

func (m *mockStats) record(companyID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scopes = append(m.scopes, companyID)
}

func (m *mockStats) CountGuards(_ context.Context, companyID int64) (int64, error) {
	m.record(companyID)
	return m.guards, nil
}

func (m *mockStats) CountFlaggedGuards(_ context.Context, companyID int64) (int64, error) {
	m.record(companyID)
	return m.flagged, nil
}

func (m *mockStats) CountActiveShifts(_ context.Context, companyID int64) (int64, error) {
	m.record(companyID)
	if m.shiftsErr != nil {
		return 0, m.shiftsErr
	}
	return m.active, nil
}

func (m *mockStats) CountOpenIncidents(_ context.Context, companyID int64) (int64, error) {
	m.record(companyID)
	return m.open, nil
}

func (m *mockStats) CountProperties(_ context.Context, companyID int64) (int64, error) {
	m.record(companyID)
	return m.props, nil
}

func TestSnapshotCollectsAllCounters(t *testing.T) {
	stats := &mockStats{guards: 12, flagged: 2, active: 5, open: 3, props: 4}
	svc := NewService(stats)

	snap, err := svc.Snapshot(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{Guards: 12, FlaggedGuards: 2, ActiveShifts: 5, OpenIncidents: 3, Properties: 4}, snap)

	stats.mu.Lock()
	defer stats.mu.Unlock()
	require.Len(t, stats.scopes, 5)
	for _, scope := range stats.scopes {
		assert.EqualValues(t, 7, scope)
	}
}

func TestSnapshotPropagatesQueryError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(&mockStats{guards: 12, shiftsErr: boom})

	snap, err := svc.Snapshot(context.Background(), 0)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, snap)
}
