package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// AuditPruner deletes audit records older than a cutoff.
type AuditPruner interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewAuditRetentionHandler returns the handler enforcing the configured
// retention period over the access log. The sweep is the only component
// allowed to delete committed audit records.
func NewAuditRetentionHandler(pruner AuditPruner, retention time.Duration, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		cutoff := time.Now().UTC().Add(-retention)
		deleted, err := pruner.DeleteExpired(ctx, cutoff)
		if err != nil {
			logger.Error("audit retention sweep failed", slog.Any("error", err))
			return err
		}
		logger.Info("audit retention sweep",
			slog.Time("cutoff", cutoff),
			slog.Int64("deleted", deleted))
		return nil
	}
}
