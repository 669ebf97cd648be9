package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritract/veritract/internal/shared"
)

// Repository defines persistence operations for API keys.
type Repository interface {
	Get(ctx context.Context, id string) (*APIKey, error)
	Create(ctx context.Context, key APIKey) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Get fetches an API key by id.
func (r *PGRepository) Get(ctx context.Context, id string) (*APIKey, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, secret_hash, superuser, is_active,
		       created_at, COALESCE(last_used_at, 'epoch'::timestamptz)
		FROM api_keys
		WHERE id = $1
	`, id)
	var key APIKey
	err := row.Scan(&key.ID, &key.TenantID, &key.Name, &key.SecretHash,
		&key.Superuser, &key.IsActive, &key.CreatedAt, &key.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &key, nil
}

// Create persists a newly issued key.
func (r *PGRepository) Create(ctx context.Context, key APIKey) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO api_keys (id, tenant_id, name, secret_hash, superuser, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, key.ID, key.TenantID, key.Name, key.SecretHash, key.Superuser, key.IsActive, key.CreatedAt)
	return err
}

// TouchLastUsed records key usage; errors are ignored by callers since the
// timestamp is informational.
func (r *PGRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at)
	return err
}

var _ Repository = (*PGRepository)(nil)
