package policy

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const versionKey = "veritract:snapshot:version"

// Versions is the snapshot version counter. The authoritative counter is a
// Postgres sequence; Redis mirrors it so readers in every process learn of
// a bump without hitting Postgres on each evaluation.
type Versions struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewVersions constructs the version counter.
func NewVersions(pool *pgxpool.Pool, rdb *redis.Client) *Versions {
	return &Versions{pool: pool, rdb: rdb}
}

// CurrentVersion returns the latest committed snapshot version.
func (v *Versions) CurrentVersion(ctx context.Context) (int64, error) {
	if v.rdb != nil {
		// Redis is an accelerator only; any miss or error falls through
		// to the authoritative sequence.
		if ver, err := v.rdb.Get(ctx, versionKey).Int64(); err == nil && ver > 0 {
			return ver, nil
		}
	}
	var ver int64
	if err := v.pool.QueryRow(ctx, `SELECT last_value FROM snapshot_version`).Scan(&ver); err != nil {
		return 0, fmt.Errorf("policy: read snapshot version: %w", err)
	}
	if v.rdb != nil {
		_ = v.rdb.Set(ctx, versionKey, ver, 0).Err()
	}
	return ver, nil
}

// BumpVersion advances the counter after a committed administrative write.
// Writers publish atomically: the new version becomes visible only once
// the data it describes is committed.
func (v *Versions) BumpVersion(ctx context.Context) (int64, error) {
	var ver int64
	if err := v.pool.QueryRow(ctx, `SELECT nextval('snapshot_version')`).Scan(&ver); err != nil {
		return 0, fmt.Errorf("policy: bump snapshot version: %w", err)
	}
	if v.rdb != nil {
		_ = v.rdb.Set(ctx, versionKey, ver, 0).Err()
	}
	return ver, nil
}
