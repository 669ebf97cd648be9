package kb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL persistence for knowledge-base grants.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListOrgAccess loads every org-subtree grant.
func (r *Repository) ListOrgAccess(ctx context.Context) ([]OrgAccess, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, kb_id, org_unit_id, can_query, can_manage
		FROM kb_org_access
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []OrgAccess
	for rows.Next() {
		var g OrgAccess
		if err := rows.Scan(&g.ID, &g.TenantID, &g.KBID, &g.OrgUnitID, &g.CanQuery, &g.CanManage); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// ListUserAccess loads every single-user grant.
func (r *Repository) ListUserAccess(ctx context.Context) ([]UserAccess, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, kb_id, user_id, can_query, can_manage
		FROM kb_user_access
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []UserAccess
	for rows.Next() {
		var g UserAccess
		if err := rows.Scan(&g.ID, &g.TenantID, &g.KBID, &g.UserID, &g.CanQuery, &g.CanManage); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// UpsertOrgAccess creates or updates an org-subtree grant.
func (r *Repository) UpsertOrgAccess(ctx context.Context, g OrgAccess) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kb_org_access (id, tenant_id, kb_id, org_unit_id, can_query, can_manage)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kb_id, org_unit_id)
		DO UPDATE SET can_query = EXCLUDED.can_query, can_manage = EXCLUDED.can_manage
	`, g.ID, g.TenantID, g.KBID, g.OrgUnitID, g.CanQuery, g.CanManage)
	return err
}

// UpsertUserAccess creates or updates a single-user grant.
func (r *Repository) UpsertUserAccess(ctx context.Context, g UserAccess) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kb_user_access (id, tenant_id, kb_id, user_id, can_query, can_manage)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kb_id, user_id)
		DO UPDATE SET can_query = EXCLUDED.can_query, can_manage = EXCLUDED.can_manage
	`, g.ID, g.TenantID, g.KBID, g.UserID, g.CanQuery, g.CanManage)
	return err
}
