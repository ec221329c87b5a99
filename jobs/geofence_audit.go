package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/observability"
)

// GeofenceAuditJob counts guards awaiting admin approval per company and
// emits a summary. It mutates nothing; the sweep exists so a flag raised
// while no admin was watching still shows up somewhere.
type GeofenceAuditJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewGeofenceAuditJob initialises the audit sweep handler.
func NewGeofenceAuditJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *GeofenceAuditJob {
	return &GeofenceAuditJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the flagged-guard sweep.
func (j *GeofenceAuditJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("geofence audit: handler not configured")
	}
	start := j.now()
	logger := j.logger()

	rows, err := j.Pool.Query(ctx, `
		SELECT company_id, COUNT(*)
		FROM guards
		WHERE requires_admin_approval
		GROUP BY company_id
		ORDER BY company_id`)
	if err != nil {
		logger.Error("audit sweep failed", slog.Any("error", err))
		j.Metrics.ObserveJob(TaskGeofenceAudit, "error")
		return err
	}
	defer rows.Close()

	var total int64
	companies := 0
	for rows.Next() {
		var companyID, count int64
		if err := rows.Scan(&companyID, &count); err != nil {
			j.Metrics.ObserveJob(TaskGeofenceAudit, "error")
			return err
		}
		logger.Warn("guards awaiting approval",
			slog.Int64("company_id", companyID),
			slog.Int64("flagged", count),
		)
		total += count
		companies++
	}
	if err := rows.Err(); err != nil {
		j.Metrics.ObserveJob(TaskGeofenceAudit, "error")
		return err
	}

	logger.Info("audit sweep completed",
		slog.Int("companies", companies),
		slog.Int64("flagged_total", total),
		slog.Duration("duration", time.Since(start)),
	)
	j.Metrics.ObserveJob(TaskGeofenceAudit, "ok")
	return nil
}

func (j *GeofenceAuditJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskGeofenceAudit))
	}
	return slog.Default().With(slog.String("job", TaskGeofenceAudit))
}

func (j *GeofenceAuditJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
