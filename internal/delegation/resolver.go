package delegation

import (
	"time"

	"github.com/veritract/veritract/internal/org"
	"github.com/veritract/veritract/internal/shared"
)

// maxChainLength caps traversal independently of record-level depth limits.
// Cycles are rejected at write time; this is the read-side stop.
const maxChainLength = 8

// Resolver computes the effective scope set of an actor at a point in time
// over one immutable set of delegation records.
type Resolver struct {
	byDelegate map[string][]Delegation
}

// NewResolver indexes delegations by delegate for chain traversal.
func NewResolver(delegations []Delegation) *Resolver {
	byDelegate := make(map[string][]Delegation)
	for _, d := range delegations {
		byDelegate[d.DelegateID] = append(byDelegate[d.DelegateID], d)
	}
	return &Resolver{byDelegate: byDelegate}
}

// EffectiveScopes returns the union of the actor's own scopes (user
// identity, roles, position-derived org subtrees, tenant membership) and
// every scope delegated to the actor whose validity window covers asOf.
// A delegated scope travels k hops only when every record on its chain
// permits at least k hops; chains that would exceed a record's MaxDepth are
// treated as absent, not as errors. Expired and not-yet-active delegations
// contribute nothing.
func (r *Resolver) EffectiveScopes(actor org.Actor, positions []org.Position, asOf time.Time) []EffectiveScope {
	scopes := ownScopes(actor, positions)
	seen := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		seen[s.Scope.Key()] = struct{}{}
	}

	visited := map[string]struct{}{actor.ID: {}}
	r.walk(actor.ID, asOf, 1, maxChainLength, visited, func(d Delegation, via string) {
		if _, ok := seen[d.Scope.Key()]; ok {
			return
		}
		seen[d.Scope.Key()] = struct{}{}
		scopes = append(scopes, EffectiveScope{Scope: d.Scope, ViaDelegation: via})
	})
	return scopes
}

// LapsedScopes returns scopes that reached the actor only through
// delegations already expired at asOf. The resolver uses these to report
// delegation_expired instead of no_grant; they never grant anything.
func (r *Resolver) LapsedScopes(actorID string, asOf time.Time) []EffectiveScope {
	var lapsed []EffectiveScope
	for _, d := range r.byDelegate[actorID] {
		if d.ExpiredAt(asOf) {
			lapsed = append(lapsed, EffectiveScope{Scope: d.Scope, ViaDelegation: d.ID})
		}
	}
	return lapsed
}

// walk follows active delegation edges away from the actor. depth is the
// distance of the current frontier from the actor; budget is the smallest
// MaxDepth seen on the path so far.
func (r *Resolver) walk(delegateID string, asOf time.Time, depth, budget int, visited map[string]struct{}, emit func(Delegation, string)) {
	for _, d := range r.byDelegate[delegateID] {
		if !d.ActiveAt(asOf) {
			continue
		}
		if _, ok := visited[d.DelegatorID]; ok {
			continue
		}
		edgeBudget := budget
		if md := normalizeDepth(d.MaxDepth); md < edgeBudget {
			edgeBudget = md
		}
		if edgeBudget < depth {
			continue
		}
		emit(d, d.ID)
		if edgeBudget > depth && depth < maxChainLength {
			visited[d.DelegatorID] = struct{}{}
			r.walk(d.DelegatorID, asOf, depth+1, edgeBudget, visited, func(inner Delegation, _ string) {
				emit(inner, d.ID)
			})
			delete(visited, d.DelegatorID)
		}
	}
}

func normalizeDepth(maxDepth int) int {
	if maxDepth < 1 {
		return 1
	}
	return maxDepth
}

func ownScopes(actor org.Actor, positions []org.Position) []EffectiveScope {
	scopes := []EffectiveScope{
		{Scope: shared.Scope{Kind: shared.ScopeUser, TenantID: actor.TenantID, UserID: actor.ID}},
		{Scope: shared.Scope{Kind: shared.ScopeTenant, TenantID: actor.TenantID}},
	}
	for _, role := range actor.Roles {
		scopes = append(scopes, EffectiveScope{Scope: shared.Scope{Kind: shared.ScopeRole, TenantID: actor.TenantID, Role: role}})
	}
	for _, p := range positions {
		if p.UserID != actor.ID {
			continue
		}
		scopes = append(scopes, EffectiveScope{Scope: shared.Scope{Kind: shared.ScopeOrgUnit, TenantID: p.TenantID, OrgUnitID: p.OrgUnitID}})
	}
	return scopes
}
