package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritract/veritract/internal/shared"
)

// Logger appends records to access_logs. The table is append-only: no
// component updates or reorders committed rows.
type Logger struct {
	pool *pgxpool.Pool
}

// NewLogger returns a new audit Logger.
func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{pool: pool}
}

// Record durably appends the entry. A failed append must fail the
// enclosing evaluation; callers never swallow this error.
func (l *Logger) Record(ctx context.Context, entry Entry) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("%w: logger not initialised", shared.ErrAuditUnavailable)
	}
	if entry.ActorID == "" || entry.Action == "" || entry.Decision == "" {
		return errors.New("audit: entry requires actor/action/decision")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO access_logs
			(id, tenant_id, actor_id, domain, resource_type, resource_id,
			 action, decision, reason, matched_policy_id, via_delegation, snapshot_version, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13)
	`,
		entry.ID, entry.TenantID, entry.ActorID, entry.Domain, entry.ResourceType, entry.ResourceID,
		entry.Action, entry.Decision, entry.Reason, entry.MatchedPolicyID, entry.ViaDelegation, entry.SnapshotVersion, entry.At,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuditUnavailable, err)
	}
	return nil
}
