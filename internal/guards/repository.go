package guards

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

const guardColumns = `id, user_id, company_id, name, phone, login_location_lat, login_location_lng, requires_admin_approval, COALESCE(approval_reason, ''), created_at, updated_at`

// Repository provides PostgreSQL backed persistence for guard profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByID loads a guard profile by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Guard, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+guardColumns+` FROM guards WHERE id = $1`, id)
	return scanGuard(row)
}

// FindByUserID loads the guard profile belonging to an auth user.
func (r *Repository) FindByUserID(ctx context.Context, userID int64) (*Guard, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+guardColumns+` FROM guards WHERE user_id = $1`, userID)
	return scanGuard(row)
}

// FindIDByUserID resolves only the profile id for an auth user.
func (r *Repository) FindIDByUserID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM guards WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, httpx.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// List returns guards for a company with pagination.
func (r *Repository) List(ctx context.Context, companyID int64, limit, offset int) ([]Guard, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM guards WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+guardColumns+` FROM guards WHERE company_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	guards, err := collectGuards(rows)
	if err != nil {
		return nil, 0, err
	}
	return guards, total, nil
}

// ListFlagged returns guards awaiting admin approval. A companyID of zero
// means no scope filter.
func (r *Repository) ListFlagged(ctx context.Context, companyID int64) ([]Guard, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+guardColumns+` FROM guards WHERE ($1 = 0 OR company_id = $1) AND requires_admin_approval ORDER BY updated_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGuards(rows)
}

// Create inserts a new guard profile.
func (r *Repository) Create(ctx context.Context, g Guard) (*Guard, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO guards (user_id, company_id, name, phone) VALUES ($1, $2, $3, $4) RETURNING `+guardColumns, g.UserID, g.CompanyID, g.Name, g.Phone)
	created, err := scanGuard(row)
	if err != nil {
		return nil, mapPGError(err)
	}
	return created, nil
}

// Update modifies name/phone fields of a profile.
func (r *Repository) Update(ctx context.Context, id int64, name, phone string) (*Guard, error) {
	row := r.pool.QueryRow(ctx, `UPDATE guards SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1 RETURNING `+guardColumns, id, name, phone)
	return scanGuard(row)
}

// Delete removes a guard profile.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM guards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// SetBaseline overwrites the login baseline coordinates.
func (r *Repository) SetBaseline(ctx context.Context, id int64, lat, lng float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE guards SET login_location_lat = $2, login_location_lng = $3, updated_at = NOW() WHERE id = $1`, id, lat, lng)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Flag marks the guard as requiring admin approval. Flag and reason land in
// one UPDATE so a client can never observe the flag without its reason.
func (r *Repository) Flag(ctx context.Context, id int64, reason string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE guards SET requires_admin_approval = TRUE, approval_reason = $2, updated_at = NOW() WHERE id = $1`, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Approve clears the approval flag and the stored baseline. The reason is
// retained for audit history; the next login establishes a fresh baseline.
func (r *Repository) Approve(ctx context.Context, id int64) (*Guard, error) {
	row := r.pool.QueryRow(ctx, `UPDATE guards SET requires_admin_approval = FALSE, login_location_lat = NULL, login_location_lng = NULL, updated_at = NOW() WHERE id = $1 RETURNING `+guardColumns, id)
	return scanGuard(row)
}

func scanGuard(row pgx.Row) (*Guard, error) {
	var g Guard
	err := row.Scan(&g.ID, &g.UserID, &g.CompanyID, &g.Name, &g.Phone, &g.LoginLocationLat, &g.LoginLocationLng, &g.RequiresAdminApproval, &g.ApprovalReason, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func collectGuards(rows pgx.Rows) ([]Guard, error) {
	var guards []Guard
	for rows.Next() {
		var g Guard
		if err := rows.Scan(&g.ID, &g.UserID, &g.CompanyID, &g.Name, &g.Phone, &g.LoginLocationLat, &g.LoginLocationLng, &g.RequiresAdminApproval, &g.ApprovalReason, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		guards = append(guards, g)
	}
	return guards, rows.Err()
}
