package policy

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritract/veritract/internal/shared"
)

var (
	// ErrDuplicate indicates an identical active policy already exists.
	ErrDuplicate = errors.New("policy: duplicate")
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL persistence for access policies.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List loads every policy, superseded ones included; the snapshot filters.
func (r *Repository) List(ctx context.Context) ([]AccessPolicy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id,
		       scope_kind, COALESCE(scope_user_id, ''), COALESCE(scope_role, ''), COALESCE(scope_org_unit_id, ''),
		       domain, resource_type, action, effect, version, superseded, created_at
		FROM access_policies
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []AccessPolicy
	for rows.Next() {
		var p AccessPolicy
		if err := rows.Scan(
			&p.ID, &p.TenantID,
			&p.Scope.Kind, &p.Scope.UserID, &p.Scope.Role, &p.Scope.OrgUnitID,
			&p.Domain, &p.ResourceType, &p.Action, &p.Effect, &p.Version, &p.Superseded, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.Scope.TenantID = p.TenantID
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// Create inserts a policy row.
func (r *Repository) Create(ctx context.Context, p AccessPolicy) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO access_policies
			(id, tenant_id, scope_kind, scope_user_id, scope_role, scope_org_unit_id,
			 domain, resource_type, action, effect, version, superseded, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, false, $12)
	`,
		p.ID, p.TenantID, p.Scope.Kind, p.Scope.UserID, p.Scope.Role, p.Scope.OrgUnitID,
		p.Domain, p.ResourceType, p.Action, p.Effect, p.Version, p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Supersede marks a policy inactive. The row stays on file for audit.
func (r *Repository) Supersede(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE access_policies SET superseded = true WHERE id = $1 AND NOT superseded`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Get fetches one policy by id.
func (r *Repository) Get(ctx context.Context, id string) (AccessPolicy, error) {
	var p AccessPolicy
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id,
		       scope_kind, COALESCE(scope_user_id, ''), COALESCE(scope_role, ''), COALESCE(scope_org_unit_id, ''),
		       domain, resource_type, action, effect, version, superseded, created_at
		FROM access_policies
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.TenantID,
		&p.Scope.Kind, &p.Scope.UserID, &p.Scope.Role, &p.Scope.OrgUnitID,
		&p.Domain, &p.ResourceType, &p.Action, &p.Effect, &p.Version, &p.Superseded, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccessPolicy{}, shared.ErrNotFound
		}
		return AccessPolicy{}, err
	}
	p.Scope.TenantID = p.TenantID
	return p, nil
}
