// Package access is the resolver callers invoke before serving or mutating
// contract or knowledge-base content. It composes the org index, delegation
// resolver, policy snapshot, classification hierarchy, and audit log into a
// single fail-closed allow/deny decision.
package access

import "github.com/veritract/veritract/internal/shared"

// Outcome is a terminal evaluation state.
type Outcome string

const (
	OutcomeAllow Outcome = "allow"
	OutcomeDeny  Outcome = "deny"
)

// Reason codes carried on every deny. A decision error (snapshot or audit
// unavailable) is not a reason code: it is reported as an error so callers
// can tell "denied by policy" from "could not evaluate policy".
const (
	ReasonCrossTenant           = "cross_tenant"
	ReasonWrongDomain           = "wrong_domain"
	ReasonInsufficientClearance = "insufficient_clearance"
	ReasonNoGrant               = "no_grant"
	ReasonExplicitDeny          = "explicit_deny"
	ReasonDelegationExpired     = "delegation_expired"
)

// Request is one evaluation: may this actor perform this action on this
// resource? TenantID is the tenant the resource belongs to; the caller
// states it explicitly rather than the resolver inferring it from ambient
// request state.
type Request struct {
	ActorID  string             `json:"actor_id" validate:"required"`
	TenantID string             `json:"tenant_id" validate:"required"`
	Domain   shared.Domain      `json:"domain" validate:"required,oneof=contracts knowledge_base"`
	Resource shared.ResourceRef `json:"resource" validate:"required"`
	Action   string             `json:"action" validate:"required"`
}

// Decision is the authoritative answer for one request. MatchedPolicyID is
// set on policy-driven allows and explicit denies; an allow granted through
// an explicit per-contract grant carries no policy id. ViaDelegation names
// the delegation the winning scope arrived through, when it did.
type Decision struct {
	Outcome         Outcome `json:"decision"`
	Reason          string  `json:"reason,omitempty"`
	MatchedPolicyID string  `json:"matched_policy_id,omitempty"`
	ViaDelegation   string  `json:"via_delegation,omitempty"`
	SnapshotVersion int64   `json:"snapshot_version"`
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }
