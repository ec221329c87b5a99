package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	cutoff time.Time
	closed int64
	err    error
}

func (f *fakeCloser) CloseStale(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.closed, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShiftAutocloseHandle(t *testing.T) {
	closer := &fakeCloser{closed: 3}
	job := NewShiftAutocloseJob(closer, testLogger(), nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	job.clock = func() time.Time { return now }

	require.NoError(t, job.Handle(context.Background(), NewShiftAutocloseTask()))
	assert.Equal(t, now, closer.cutoff)
}

func TestShiftAutoclosePropagatesError(t *testing.T) {
	boom := errors.New("db down")
	job := NewShiftAutocloseJob(&fakeCloser{err: boom}, testLogger(), nil)

	assert.ErrorIs(t, job.Handle(context.Background(), NewShiftAutocloseTask()), boom)
}

func TestShiftAutocloseUnconfigured(t *testing.T) {
	var job *ShiftAutocloseJob
	assert.Error(t, job.Handle(context.Background(), NewShiftAutocloseTask()))
}
