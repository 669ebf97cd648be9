package access

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/veritract/veritract/internal/audit"
	"github.com/veritract/veritract/internal/contracts"
	"github.com/veritract/veritract/internal/delegation"
	"github.com/veritract/veritract/internal/org"
	"github.com/veritract/veritract/internal/policy"
	"github.com/veritract/veritract/internal/seclevel"
	"github.com/veritract/veritract/internal/shared"
)

// SnapshotSource pins one immutable snapshot per evaluation.
type SnapshotSource interface {
	Current(ctx context.Context) (*policy.Snapshot, error)
}

// Recorder durably appends one audit record per evaluation.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// DecisionObserver receives one observation per released decision.
type DecisionObserver interface {
	ObserveDecision(domain, outcome, reason string)
}

// Resolver evaluates access requests against a pinned snapshot. It is
// stateless across evaluations; concurrent calls share nothing mutable.
type Resolver struct {
	snapshots SnapshotSource
	levels    *seclevel.Hierarchy
	auditor   Recorder
	metrics   DecisionObserver
	logger    *slog.Logger
	now       func() time.Time
}

// NewResolver constructs the resolver. metrics may be nil.
func NewResolver(snapshots SnapshotSource, levels *seclevel.Hierarchy, auditor Recorder, metrics DecisionObserver, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		snapshots: snapshots,
		levels:    levels,
		auditor:   auditor,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CheckAccess decides whether the actor may perform the action on the
// resource. Exactly one audit record is written, durably, before the
// decision is released; a failed audit write fails the evaluation. An
// unavailable snapshot is an error, never a silent allow or a policy deny.
func (r *Resolver) CheckAccess(ctx context.Context, req Request) (Decision, error) {
	snap, err := r.snapshots.Current(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", shared.ErrEvaluationFailed, err)
	}
	decision, err := r.evaluate(snap, req)
	if err != nil {
		return Decision{}, err
	}
	if err := r.auditor.Record(ctx, audit.Entry{
		TenantID:        req.TenantID,
		ActorID:         req.ActorID,
		Domain:          req.Domain,
		ResourceType:    req.Resource.Type,
		ResourceID:      req.Resource.ID,
		Action:          req.Action,
		Decision:        string(decision.Outcome),
		Reason:          decision.Reason,
		MatchedPolicyID: decision.MatchedPolicyID,
		ViaDelegation:   decision.ViaDelegation,
		SnapshotVersion: snap.Version(),
		At:              r.now(),
	}); err != nil {
		return Decision{}, err
	}
	if r.metrics != nil {
		r.metrics.ObserveDecision(string(req.Domain), string(decision.Outcome), decision.Reason)
	}
	return decision, nil
}

// FilterAllowed returns the subset of refs the actor may act on. It is
// defined as per-item CheckAccess, so each item is pinned, decided, and
// audited exactly as a single-item call would be.
func (r *Resolver) FilterAllowed(ctx context.Context, actorID, tenantID string, domain shared.Domain, action string, refs []shared.ResourceRef) ([]shared.ResourceRef, error) {
	allowed := make([]shared.ResourceRef, 0, len(refs))
	for _, ref := range refs {
		decision, err := r.CheckAccess(ctx, Request{
			ActorID:  actorID,
			TenantID: tenantID,
			Domain:   domain,
			Resource: ref,
			Action:   action,
		})
		if err != nil {
			return nil, err
		}
		if decision.Allowed() {
			allowed = append(allowed, ref)
		}
	}
	return allowed, nil
}

// evaluate runs the decision algorithm over one pinned snapshot. Every
// step short-circuits on a definitive result; absence of a matching allow
// is a deny.
func (r *Resolver) evaluate(snap *policy.Snapshot, req Request) (Decision, error) {
	version := snap.Version()
	deny := func(reason, policyID string) (Decision, error) {
		return Decision{Outcome: OutcomeDeny, Reason: reason, MatchedPolicyID: policyID, SnapshotVersion: version}, nil
	}

	actor, ok := snap.Actor(req.ActorID)
	if !ok {
		// Unknown actors hold no grants anywhere; fail closed.
		return deny(ReasonNoGrant, "")
	}

	if actor.TenantID != req.TenantID {
		return deny(ReasonCrossTenant, "")
	}

	if !req.Domain.Valid() {
		return deny(ReasonWrongDomain, "")
	}
	var vis contracts.Visibility
	var classified bool
	if req.Domain == shared.DomainContracts {
		vis, classified = snap.Visibility(req.Resource.ID)
		if classified && vis.TenantID != actor.TenantID {
			return deny(ReasonCrossTenant, "")
		}
	} else if actor.Kind != shared.ActorAgent {
		// The knowledge-base universe is reachable only by agents.
		return deny(ReasonWrongDomain, "")
	}

	asOf := r.now()
	scopes := snap.Delegations().EffectiveScopes(actor, snap.Positions(), asOf)
	matches := r.collectMatches(snap, actor, req, scopes)
	if req.Domain == shared.DomainContracts && classified && vis.GrantedTo(actor.ID, req.Action) {
		// Explicit per-contract grants are additive at user specificity;
		// they bypass the policy requirement but never the classification.
		matches = append(matches, policy.Match{
			Policy:      policy.AccessPolicy{Effect: policy.EffectAllow},
			Specificity: (shared.Scope{Kind: shared.ScopeUser}).Specificity(),
		})
	}

	if len(matches) == 0 {
		return deny(r.absenceReason(snap, actor, req, asOf), "")
	}

	// Most-specific wins; deny wins over allow at equal specificity.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Specificity > matches[j].Specificity
	})
	top := matches[0].Specificity
	var winner *policy.Match
	for i := range matches {
		if matches[i].Specificity != top {
			break
		}
		if matches[i].Policy.Effect == policy.EffectDeny {
			return deny(ReasonExplicitDeny, matches[i].Policy.ID)
		}
		if winner == nil {
			winner = &matches[i]
		}
	}

	if req.Domain == shared.DomainContracts && classified {
		gate, err := r.clearanceGate(actor, vis)
		if err != nil {
			return Decision{}, err
		}
		if !gate {
			return deny(ReasonInsufficientClearance, "")
		}
	}

	return Decision{
		Outcome:         OutcomeAllow,
		MatchedPolicyID: winner.Policy.ID,
		ViaDelegation:   winner.ViaDelegation,
		SnapshotVersion: version,
	}, nil
}

// collectMatches gathers policy matches over the candidate scopes plus the
// knowledge-base grants the snapshot carries for the target KB. KB user
// grants match at user specificity; KB org grants match at org-subtree
// specificity when one of the candidate org units lies within the granted
// subtree.
func (r *Resolver) collectMatches(snap *policy.Snapshot, actor org.Actor, req Request, candidates []delegation.EffectiveScope) []policy.Match {
	matches := snap.Matching(req.Domain, actor.TenantID, req.Resource.Type, req.Action, candidates)
	if req.Domain != shared.DomainKnowledgeBase {
		return matches
	}
	for _, g := range snap.KBUserGrants(req.Resource.ID) {
		if g.TenantID == actor.TenantID && g.UserID == actor.ID && g.Allows(req.Action) {
			matches = append(matches, policy.Match{
				Policy:      policy.AccessPolicy{ID: g.ID, Effect: policy.EffectAllow},
				Specificity: (shared.Scope{Kind: shared.ScopeUser}).Specificity(),
			})
		}
	}
	for _, g := range snap.KBOrgGrants(req.Resource.ID) {
		if g.TenantID != actor.TenantID || !g.Allows(req.Action) {
			continue
		}
		for _, c := range candidates {
			if c.Scope.Kind != shared.ScopeOrgUnit || c.Scope.TenantID != g.TenantID {
				continue
			}
			if snap.OrgIndex().IsWithin(c.Scope.OrgUnitID, g.OrgUnitID) {
				matches = append(matches, policy.Match{
					Policy:        policy.AccessPolicy{ID: g.ID, Effect: policy.EffectAllow},
					Specificity:   (shared.Scope{Kind: shared.ScopeOrgUnit}).Specificity(),
					ViaDelegation: c.ViaDelegation,
				})
				break
			}
		}
	}
	return matches
}

// absenceReason distinguishes "never granted" from "granted through a
// delegation that has lapsed". Lapsed scopes never grant anything; they
// only refine the reported reason.
func (r *Resolver) absenceReason(snap *policy.Snapshot, actor org.Actor, req Request, asOf time.Time) string {
	lapsed := snap.Delegations().LapsedScopes(actor.ID, asOf)
	if len(lapsed) == 0 {
		return ReasonNoGrant
	}
	for _, m := range r.collectMatches(snap, actor, req, lapsed) {
		if m.Policy.Effect == policy.EffectAllow {
			return ReasonDelegationExpired
		}
	}
	return ReasonNoGrant
}

// clearanceGate applies the classification requirement. A blank clearance
// can never satisfy a classified document; an unknown level name on either
// side is a configuration defect, not a per-request condition.
func (r *Resolver) clearanceGate(actor org.Actor, vis contracts.Visibility) (bool, error) {
	required, err := r.levels.Lookup(vis.SecurityLevel)
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrEvaluationFailed, err)
	}
	if actor.Clearance == "" {
		return false, nil
	}
	clearance, err := r.levels.Lookup(actor.Clearance)
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrEvaluationFailed, err)
	}
	return r.levels.Satisfies(clearance, required), nil
}
