package contracts

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL persistence for contract visibility.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List loads visibility rows with their explicit grants.
func (r *Repository) List(ctx context.Context) ([]Visibility, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT contract_id, tenant_id, org_unit_id, security_level, updated_at
		FROM contract_visibility
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visibilities []Visibility
	index := make(map[string]int)
	for rows.Next() {
		var v Visibility
		if err := rows.Scan(&v.ContractID, &v.TenantID, &v.OrgUnitID, &v.SecurityLevel, &v.UpdatedAt); err != nil {
			return nil, err
		}
		index[v.ContractID] = len(visibilities)
		visibilities = append(visibilities, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	grantRows, err := r.pool.Query(ctx, `
		SELECT contract_id, user_id, action
		FROM contract_explicit_grants
	`)
	if err != nil {
		return nil, err
	}
	defer grantRows.Close()

	for grantRows.Next() {
		var contractID string
		var g ExplicitGrant
		if err := grantRows.Scan(&contractID, &g.UserID, &g.Action); err != nil {
			return nil, err
		}
		if i, ok := index[contractID]; ok {
			visibilities[i].ExplicitGrants = append(visibilities[i].ExplicitGrants, g)
		}
	}
	return visibilities, grantRows.Err()
}

// SetLevel updates the classification of a contract.
func (r *Repository) SetLevel(ctx context.Context, contractID, tenantID, orgUnitID, level string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contract_visibility (contract_id, tenant_id, org_unit_id, security_level, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (contract_id)
		DO UPDATE SET security_level = EXCLUDED.security_level, org_unit_id = EXCLUDED.org_unit_id, updated_at = NOW()
	`, contractID, tenantID, orgUnitID, level)
	return err
}

// AddExplicitGrant appends an additive per-document grant.
func (r *Repository) AddExplicitGrant(ctx context.Context, contractID, userID, action string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contract_explicit_grants (contract_id, user_id, action)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, contractID, userID, action)
	return err
}
