package delegation

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL persistence for delegation records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List loads every delegation record. Expired records are included; they
// stay on file for audit.
func (r *Repository) List(ctx context.Context) ([]Delegation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, delegator_id, delegate_id,
		       scope_kind, COALESCE(scope_user_id, ''), COALESCE(scope_role, ''), COALESCE(scope_org_unit_id, ''),
		       valid_from, valid_until, max_depth, created_at
		FROM org_delegations
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var delegations []Delegation
	for rows.Next() {
		var d Delegation
		if err := rows.Scan(
			&d.ID, &d.TenantID, &d.DelegatorID, &d.DelegateID,
			&d.Scope.Kind, &d.Scope.UserID, &d.Scope.Role, &d.Scope.OrgUnitID,
			&d.ValidFrom, &d.ValidUntil, &d.MaxDepth, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Scope.TenantID = d.TenantID
		delegations = append(delegations, d)
	}
	return delegations, rows.Err()
}

// ListActiveBetween returns delegations whose validity window intersects
// the given range. The worker uses this for the expiry sweep report.
func (r *Repository) ListActiveBetween(ctx context.Context, from, until time.Time) ([]Delegation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, delegator_id, delegate_id,
		       scope_kind, COALESCE(scope_user_id, ''), COALESCE(scope_role, ''), COALESCE(scope_org_unit_id, ''),
		       valid_from, valid_until, max_depth, created_at
		FROM org_delegations
		WHERE valid_until >= $1 AND valid_from <= $2
		ORDER BY valid_until
	`, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var delegations []Delegation
	for rows.Next() {
		var d Delegation
		if err := rows.Scan(
			&d.ID, &d.TenantID, &d.DelegatorID, &d.DelegateID,
			&d.Scope.Kind, &d.Scope.UserID, &d.Scope.Role, &d.Scope.OrgUnitID,
			&d.ValidFrom, &d.ValidUntil, &d.MaxDepth, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Scope.TenantID = d.TenantID
		delegations = append(delegations, d)
	}
	return delegations, rows.Err()
}

// Create inserts a delegation record.
func (r *Repository) Create(ctx context.Context, d Delegation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO org_delegations
			(id, tenant_id, delegator_id, delegate_id,
			 scope_kind, scope_user_id, scope_role, scope_org_unit_id,
			 valid_from, valid_until, max_depth, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12)
	`,
		d.ID, d.TenantID, d.DelegatorID, d.DelegateID,
		d.Scope.Kind, d.Scope.UserID, d.Scope.Role, d.Scope.OrgUnitID,
		d.ValidFrom, d.ValidUntil, d.MaxDepth, d.CreatedAt,
	)
	return err
}
