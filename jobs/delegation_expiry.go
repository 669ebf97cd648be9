package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/veritract/veritract/internal/delegation"
)

// DelegationLister reads delegations active within a window.
type DelegationLister interface {
	ListActiveBetween(ctx context.Context, from, until time.Time) ([]delegation.Delegation, error)
}

// NewDelegationExpiryHandler returns the handler reporting delegations that
// lapse within the next 24 hours. Records are never mutated; lapsing is
// purely a function of the clock.
func NewDelegationExpiryHandler(lister DelegationLister, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		now := time.Now().UTC()
		horizon := now.Add(24 * time.Hour)
		active, err := lister.ListActiveBetween(ctx, now, horizon)
		if err != nil {
			logger.Error("delegation expiry report failed", slog.Any("error", err))
			return err
		}
		for _, d := range active {
			if d.ValidUntil.After(horizon) {
				continue
			}
			logger.Info("delegation lapsing",
				slog.String("delegation_id", d.ID),
				slog.String("tenant_id", d.TenantID),
				slog.String("delegator_id", d.DelegatorID),
				slog.String("delegate_id", d.DelegateID),
				slog.Time("valid_until", d.ValidUntil))
		}
		return nil
	}
}
