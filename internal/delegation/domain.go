// Package delegation resolves time-bounded transfers of organizational
// scope between actors.
package delegation

import (
	"time"

	"github.com/veritract/veritract/internal/shared"
)

// Delegation is a directional, time-bounded transfer of one scope from a
// delegator to a delegate. Expired delegations are inert but never deleted;
// they remain for audit.
type Delegation struct {
	ID          string
	TenantID    string
	DelegatorID string
	DelegateID  string
	Scope       shared.Scope
	ValidFrom   time.Time
	ValidUntil  time.Time
	MaxDepth    int
	CreatedAt   time.Time
}

// ActiveAt reports whether the validity window covers asOf. The window is a
// closed interval on both ends.
func (d Delegation) ActiveAt(asOf time.Time) bool {
	return !asOf.Before(d.ValidFrom) && !asOf.After(d.ValidUntil)
}

// ExpiredAt reports whether the window has already lapsed at asOf.
func (d Delegation) ExpiredAt(asOf time.Time) bool {
	return asOf.After(d.ValidUntil)
}

// EffectiveScope is a scope an actor holds, with provenance when it arrived
// through a delegation chain.
type EffectiveScope struct {
	Scope shared.Scope
	// ViaDelegation is the id of the delegation closest to the actor on the
	// chain that produced this scope; empty for the actor's own scopes.
	ViaDelegation string
}
