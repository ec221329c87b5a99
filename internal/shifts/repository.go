package shifts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

const shiftColumns = `id, guard_id, property_id, scheduled_start, scheduled_end, clock_in_at, clock_out_at, clock_in_lat, clock_in_lng, status, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for shifts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns one shift.
func (r *Repository) Get(ctx context.Context, id int64) (*Shift, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
	return scanShift(row)
}

// ListByGuard returns a guard's shifts, newest first.
func (r *Repository) ListByGuard(ctx context.Context, guardID int64, limit int) ([]Shift, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE guard_id = $1 ORDER BY scheduled_start DESC LIMIT $2`, guardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

// ListByProperty returns a property's shifts, newest first.
func (r *Repository) ListByProperty(ctx context.Context, propertyID int64, limit int) ([]Shift, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE property_id = $1 ORDER BY scheduled_start DESC LIMIT $2`, propertyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

// Create inserts a scheduled shift.
func (r *Repository) Create(ctx context.Context, s Shift) (*Shift, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO shifts (guard_id, property_id, scheduled_start, scheduled_end, status) VALUES ($1, $2, $3, $4, $5) RETURNING `+shiftColumns,
		s.GuardID, s.PropertyID, s.ScheduledStart, s.ScheduledEnd, StatusScheduled)
	return scanShift(row)
}

// ClockIn records the clock-in position and activates the shift.
func (r *Repository) ClockIn(ctx context.Context, id int64, at time.Time, lat, lng float64) (*Shift, error) {
	row := r.pool.QueryRow(ctx, `UPDATE shifts SET clock_in_at = $2, clock_in_lat = $3, clock_in_lng = $4, status = $5, updated_at = NOW() WHERE id = $1 RETURNING `+shiftColumns,
		id, at, lat, lng, StatusActive)
	return scanShift(row)
}

// ClockOut completes the shift.
func (r *Repository) ClockOut(ctx context.Context, id int64, at time.Time) (*Shift, error) {
	row := r.pool.QueryRow(ctx, `UPDATE shifts SET clock_out_at = $2, status = $3, updated_at = NOW() WHERE id = $1 RETURNING `+shiftColumns,
		id, at, StatusCompleted)
	return scanShift(row)
}

// CloseStale marks shifts as completed or missed after their scheduled end
// passed without a clock-out. Active shifts complete; scheduled ones are
// missed. Returns the number of rows touched.
func (r *Repository) CloseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shifts
		SET status = CASE WHEN status = $2 THEN $3 ELSE $4 END,
		    clock_out_at = CASE WHEN status = $2 THEN scheduled_end ELSE clock_out_at END,
		    updated_at = NOW()
		WHERE scheduled_end < $1 AND status IN ($2, $5)`,
		cutoff, StatusActive, StatusCompleted, StatusMissed, StatusScheduled)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RecordScan inserts a checkpoint scan.
func (r *Repository) RecordScan(ctx context.Context, s Scan) (*Scan, error) {
	var created Scan
	err := r.pool.QueryRow(ctx, `INSERT INTO checkpoint_scans (shift_id, checkpoint_id, scanned_at, lat, lng) VALUES ($1, $2, $3, $4, $5) RETURNING id, shift_id, checkpoint_id, scanned_at, lat, lng`,
		s.ShiftID, s.CheckpointID, s.ScannedAt, s.Lat, s.Lng).
		Scan(&created.ID, &created.ShiftID, &created.CheckpointID, &created.ScannedAt, &created.Lat, &created.Lng)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListScans returns the scans of a shift in order.
func (r *Repository) ListScans(ctx context.Context, shiftID int64) ([]Scan, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, shift_id, checkpoint_id, scanned_at, lat, lng FROM checkpoint_scans WHERE shift_id = $1 ORDER BY scanned_at`, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var scans []Scan
	for rows.Next() {
		var s Scan
		if err := rows.Scan(&s.ID, &s.ShiftID, &s.CheckpointID, &s.ScannedAt, &s.Lat, &s.Lng); err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

func scanShift(row pgx.Row) (*Shift, error) {
	var s Shift
	err := row.Scan(&s.ID, &s.GuardID, &s.PropertyID, &s.ScheduledStart, &s.ScheduledEnd, &s.ClockInAt, &s.ClockOutAt, &s.ClockInLat, &s.ClockInLng, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func collectShifts(rows pgx.Rows) ([]Shift, error) {
	var shifts []Shift
	for rows.Next() {
		var s Shift
		if err := rows.Scan(&s.ID, &s.GuardID, &s.PropertyID, &s.ScheduledStart, &s.ScheduledEnd, &s.ClockInAt, &s.ClockOutAt, &s.ClockInLat, &s.ClockInLng, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}
