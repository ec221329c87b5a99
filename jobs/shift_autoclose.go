package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/observability"
)

// ShiftCloser marks stale shifts completed or missed.
type ShiftCloser interface {
	CloseStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// ShiftAutocloseJob sweeps shifts whose scheduled end passed without a
// clock-out.
type ShiftAutocloseJob struct {
	Shifts  ShiftCloser
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewShiftAutocloseJob initialises the autoclose handler.
func NewShiftAutocloseJob(shifts ShiftCloser, logger *slog.Logger, metrics *observability.Metrics) *ShiftAutocloseJob {
	return &ShiftAutocloseJob{
		Shifts:  shifts,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the autoclose sweep.
func (j *ShiftAutocloseJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Shifts == nil {
		return errors.New("shift autoclose: handler not configured")
	}
	start := j.now()
	closed, err := j.Shifts.CloseStale(ctx, start)
	if err != nil {
		j.logger().Error("autoclose sweep failed", slog.Any("error", err))
		j.Metrics.ObserveJob(TaskShiftAutoclose, "error")
		return err
	}
	j.logger().Info("autoclose sweep completed",
		slog.Int64("closed", closed),
		slog.Duration("duration", time.Since(start)),
	)
	j.Metrics.ObserveJob(TaskShiftAutoclose, "ok")
	return nil
}

func (j *ShiftAutocloseJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskShiftAutoclose))
	}
	return slog.Default().With(slog.String("job", TaskShiftAutoclose))
}

func (j *ShiftAutocloseJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
