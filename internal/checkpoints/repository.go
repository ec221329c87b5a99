package checkpoints

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

const checkpointColumns = `id, property_id, name, code, lat, lng, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for checkpoints.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByProperty returns the checkpoints of a property.
func (r *Repository) ListByProperty(ctx context.Context, propertyID int64) ([]Checkpoint, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+checkpointColumns+` FROM checkpoints WHERE property_id = $1 ORDER BY name`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var checkpoints []Checkpoint
	for rows.Next() {
		var c Checkpoint
		if err := rows.Scan(&c.ID, &c.PropertyID, &c.Name, &c.Code, &c.Lat, &c.Lng, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, c)
	}
	return checkpoints, rows.Err()
}

// Get returns one checkpoint.
func (r *Repository) Get(ctx context.Context, id int64) (*Checkpoint, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+checkpointColumns+` FROM checkpoints WHERE id = $1`, id)
	return scanCheckpoint(row)
}

// FindByCode resolves a scanned code within a property.
func (r *Repository) FindByCode(ctx context.Context, propertyID int64, code string) (*Checkpoint, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+checkpointColumns+` FROM checkpoints WHERE property_id = $1 AND code = $2`, propertyID, code)
	return scanCheckpoint(row)
}

// Create inserts a checkpoint. A duplicate code within the property maps to
// httpx.ErrDuplicate via the unique constraint.
func (r *Repository) Create(ctx context.Context, c Checkpoint) (*Checkpoint, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO checkpoints (property_id, name, code, lat, lng) VALUES ($1, $2, $3, $4, $5) RETURNING `+checkpointColumns,
		c.PropertyID, c.Name, c.Code, c.Lat, c.Lng)
	created, err := scanCheckpoint(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// Delete removes a checkpoint.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM checkpoints WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanCheckpoint(row pgx.Row) (*Checkpoint, error) {
	var c Checkpoint
	err := row.Scan(&c.ID, &c.PropertyID, &c.Name, &c.Code, &c.Lat, &c.Lng, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
