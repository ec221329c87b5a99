package overview

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository answers the count queries behind the dashboard snapshot. A
// companyID of zero means no scope filter.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountGuards returns the number of guard profiles in scope.
func (r *Repository) CountGuards(ctx context.Context, companyID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM guards WHERE $1 = 0 OR company_id = $1`, companyID)
}

// CountFlaggedGuards returns the number of guards awaiting admin approval.
func (r *Repository) CountFlaggedGuards(ctx context.Context, companyID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM guards WHERE ($1 = 0 OR company_id = $1) AND requires_admin_approval`, companyID)
}

// CountActiveShifts returns the number of shifts currently clocked in.
func (r *Repository) CountActiveShifts(ctx context.Context, companyID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM shifts s JOIN properties p ON p.id = s.property_id WHERE ($1 = 0 OR p.company_id = $1) AND s.status = $2`, companyID, "active")
}

// CountOpenIncidents returns the number of incident reports still open.
func (r *Repository) CountOpenIncidents(ctx context.Context, companyID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM incidents i JOIN properties p ON p.id = i.property_id WHERE ($1 = 0 OR p.company_id = $1) AND i.status = $2`, companyID, "open")
}

// CountProperties returns the number of properties in scope.
func (r *Repository) CountProperties(ctx context.Context, companyID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM properties WHERE $1 = 0 OR company_id = $1`, companyID)
}
