package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritract/veritract/internal/shared"
)

// Repository provides read-only access to organizational data. Mutation
// belongs to administrative collaborators outside this service.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TreeVersion returns the current org-tree generation counter.
func (r *Repository) TreeVersion(ctx context.Context) (int64, error) {
	var version int64
	err := r.pool.QueryRow(ctx, `SELECT last_value FROM org_tree_version`).Scan(&version)
	return version, err
}

// ListUnits loads every org unit across tenants with materialized paths.
func (r *Repository) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, COALESCE(parent_id, ''), name, path
		FROM org_units
		ORDER BY tenant_id, path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.TenantID, &u.ParentID, &u.Name, &u.Path); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// ListPositions loads filled and vacant position seats.
func (r *Repository) ListPositions(ctx context.Context) ([]Position, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, org_unit_id, COALESCE(user_id, ''), role_code
		FROM positions
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.ID, &p.TenantID, &p.OrgUnitID, &p.UserID, &p.RoleCode); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// ListActors loads users and agents with clearance and role assignments.
func (r *Repository) ListActors(ctx context.Context) ([]Actor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, kind, COALESCE(clearance, ''), COALESCE(roles, '{}'), is_superuser
		FROM actors
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actors []Actor
	for rows.Next() {
		var a Actor
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Kind, &a.Clearance, &a.Roles, &a.Superuser); err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

// GetActor fetches a single actor by id.
func (r *Repository) GetActor(ctx context.Context, id string) (Actor, error) {
	var a Actor
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, kind, COALESCE(clearance, ''), COALESCE(roles, '{}'), is_superuser
		FROM actors
		WHERE id = $1
	`, id).Scan(&a.ID, &a.TenantID, &a.Kind, &a.Clearance, &a.Roles, &a.Superuser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Actor{}, shared.ErrNotFound
		}
		return Actor{}, err
	}
	return a, nil
}
