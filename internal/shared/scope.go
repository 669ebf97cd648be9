package shared

import "fmt"

// Domain identifies one of the two isolated resource universes. Grants in
// one domain never satisfy requests in the other.
type Domain string

const (
	DomainContracts     Domain = "contracts"
	DomainKnowledgeBase Domain = "knowledge_base"
)

// Valid reports whether the domain is one of the known universes.
func (d Domain) Valid() bool {
	return d == DomainContracts || d == DomainKnowledgeBase
}

// ActorKind distinguishes human users acting through positions from
// automated agents.
type ActorKind string

const (
	ActorUser  ActorKind = "user"
	ActorAgent ActorKind = "agent"
)

// ResourceRef identifies the target of an access check within a domain.
type ResourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ScopeKind enumerates the actor sets a policy can cover.
type ScopeKind string

const (
	ScopeUser    ScopeKind = "user"
	ScopeRole    ScopeKind = "role"
	ScopeOrgUnit ScopeKind = "org_unit"
	ScopeTenant  ScopeKind = "tenant"
)

// Scope describes a set of actors: a single user, a role, an org subtree,
// or a whole tenant. TenantID is always set; the remaining field depends on
// Kind.
type Scope struct {
	Kind      ScopeKind `json:"kind"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	OrgUnitID string    `json:"org_unit_id,omitempty"`
}

// Specificity orders scopes for policy precedence: an explicit user grant
// outranks a role grant, which outranks an org-subtree grant, which
// outranks a tenant default.
func (s Scope) Specificity() int {
	switch s.Kind {
	case ScopeUser:
		return 3
	case ScopeRole:
		return 2
	case ScopeOrgUnit:
		return 1
	default:
		return 0
	}
}

// Validate rejects descriptors whose selector fields do not match the
// kind: exactly one selector for user/role/org_unit scopes, none for a
// tenant default. Every write surface accepting a scope runs this; the
// decision path assumes it already happened.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeUser:
		if s.UserID == "" || s.Role != "" || s.OrgUnitID != "" {
			return fmt.Errorf("%w: user scope requires exactly user_id", ErrInvalidScope)
		}
	case ScopeRole:
		if s.Role == "" || s.UserID != "" || s.OrgUnitID != "" {
			return fmt.Errorf("%w: role scope requires exactly role", ErrInvalidScope)
		}
	case ScopeOrgUnit:
		if s.OrgUnitID == "" || s.UserID != "" || s.Role != "" {
			return fmt.Errorf("%w: org_unit scope requires exactly org_unit_id", ErrInvalidScope)
		}
	case ScopeTenant:
		if s.UserID != "" || s.Role != "" || s.OrgUnitID != "" {
			return fmt.Errorf("%w: tenant scope carries no selector", ErrInvalidScope)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidScope, s.Kind)
	}
	return nil
}

// Key returns a stable identity for set membership.
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeUser:
		return "user:" + s.TenantID + ":" + s.UserID
	case ScopeRole:
		return "role:" + s.TenantID + ":" + s.Role
	case ScopeOrgUnit:
		return "org:" + s.TenantID + ":" + s.OrgUnitID
	default:
		return "tenant:" + s.TenantID
	}
}
