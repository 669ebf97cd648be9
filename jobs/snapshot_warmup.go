package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// SnapshotWarmer loads the latest snapshot eagerly.
type SnapshotWarmer interface {
	Warm(ctx context.Context) error
}

// NewSnapshotWarmupHandler returns the handler that pre-loads the current
// snapshot so evaluation latency stays flat across version bumps.
func NewSnapshotWarmupHandler(warmer SnapshotWarmer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		if err := warmer.Warm(ctx); err != nil {
			logger.Error("snapshot warmup failed", slog.Any("error", err))
			return err
		}
		logger.Info("snapshot warmed")
		return nil
	}
}
