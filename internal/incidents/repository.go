package incidents

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

const incidentColumns = `id, shift_id, guard_id, property_id, severity, title, description, photo_keys, status, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for incident reports.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns one incident.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Incident, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = $1`, id)
	return scanIncident(row)
}

// List returns incidents for a company, newest first. status filters when
// non-empty; companyID zero means unrestricted.
func (r *Repository) List(ctx context.Context, companyID int64, status string, limit, offset int) ([]Incident, int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+qualified(incidentColumns)+`
		FROM incidents i
		JOIN properties p ON p.id = i.property_id
		WHERE ($1 = 0 OR p.company_id = $1)
		  AND ($2 = '' OR i.status = $2)
		ORDER BY i.created_at DESC
		LIMIT $3 OFFSET $4`, companyID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var incidents []Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, 0, err
		}
		incidents = append(incidents, *inc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM incidents i
		JOIN properties p ON p.id = i.property_id
		WHERE ($1 = 0 OR p.company_id = $1)
		  AND ($2 = '' OR i.status = $2)`, companyID, status).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return incidents, total, nil
}

// ListByGuard returns a guard's own reports, newest first.
func (r *Repository) ListByGuard(ctx context.Context, guardID int64, limit int) ([]Incident, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE guard_id = $1 ORDER BY created_at DESC LIMIT $2`, guardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, *inc)
	}
	return incidents, rows.Err()
}

// Create inserts a new open incident.
func (r *Repository) Create(ctx context.Context, inc Incident) (*Incident, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO incidents (id, shift_id, guard_id, property_id, severity, title, description, photo_keys, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+incidentColumns,
		inc.ID, inc.ShiftID, inc.GuardID, inc.PropertyID, inc.Severity, inc.Title, inc.Description, inc.PhotoKeys, StatusOpen)
	return scanIncident(row)
}

// UpdateStatus moves a report to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Incident, error) {
	row := r.pool.QueryRow(ctx, `UPDATE incidents SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+incidentColumns, id, status)
	return scanIncident(row)
}

// CompanyOf returns the owning company of an incident's property.
func (r *Repository) CompanyOf(ctx context.Context, id uuid.UUID) (int64, error) {
	var companyID int64
	err := r.pool.QueryRow(ctx, `
		SELECT p.company_id FROM incidents i JOIN properties p ON p.id = i.property_id WHERE i.id = $1`, id).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, httpx.ErrNotFound
		}
		return 0, err
	}
	return companyID, nil
}

func scanIncident(row pgx.Row) (*Incident, error) {
	var inc Incident
	err := row.Scan(&inc.ID, &inc.ShiftID, &inc.GuardID, &inc.PropertyID, &inc.Severity, &inc.Title, &inc.Description, &inc.PhotoKeys, &inc.Status, &inc.CreatedAt, &inc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &inc, nil
}

// qualified prefixes each column with the incidents alias for joined queries.
func qualified(cols string) string {
	return "i." + strings.ReplaceAll(cols, ", ", ", i.")
}
