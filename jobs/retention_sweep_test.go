package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakePruner) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestAuditRetentionHandlerUsesConfiguredPeriod(t *testing.T) {
	pruner := &fakePruner{deleted: 12}
	retention := 7 * 365 * 24 * time.Hour
	handler := NewAuditRetentionHandler(pruner, retention, slog.Default())

	before := time.Now().UTC().Add(-retention)
	require.NoError(t, handler(context.Background(), asynq.NewTask(TaskAuditRetentionSweep, nil)))
	after := time.Now().UTC().Add(-retention)

	require.False(t, pruner.cutoff.Before(before))
	require.False(t, pruner.cutoff.After(after))
}

func TestAuditRetentionHandlerPropagatesFailure(t *testing.T) {
	pruner := &fakePruner{err: errors.New("pg down")}
	handler := NewAuditRetentionHandler(pruner, time.Hour, slog.Default())

	require.Error(t, handler(context.Background(), asynq.NewTask(TaskAuditRetentionSweep, nil)))
}
