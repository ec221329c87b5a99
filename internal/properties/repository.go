package properties

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

const propertyColumns = `id, company_id, name, address, lat, lng, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for properties.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns properties for a company.
func (r *Repository) List(ctx context.Context, companyID int64) ([]Property, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+propertyColumns+` FROM properties WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var properties []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Address, &p.Lat, &p.Lng, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// Get returns one property.
func (r *Repository) Get(ctx context.Context, id int64) (*Property, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	return scanProperty(row)
}

// Create inserts a property.
func (r *Repository) Create(ctx context.Context, p Property) (*Property, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO properties (company_id, name, address, lat, lng, is_active) VALUES ($1, $2, $3, $4, $5, TRUE) RETURNING `+propertyColumns,
		p.CompanyID, p.Name, p.Address, p.Lat, p.Lng)
	return scanProperty(row)
}

// Update modifies a property.
func (r *Repository) Update(ctx context.Context, id int64, p Property) (*Property, error) {
	row := r.pool.QueryRow(ctx, `UPDATE properties SET name = $2, address = $3, lat = $4, lng = $5, is_active = $6, updated_at = NOW() WHERE id = $1 RETURNING `+propertyColumns,
		id, p.Name, p.Address, p.Lat, p.Lng, p.IsActive)
	return scanProperty(row)
}

// Delete removes a property.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanProperty(row pgx.Row) (*Property, error) {
	var p Property
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Address, &p.Lat, &p.Lng, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
