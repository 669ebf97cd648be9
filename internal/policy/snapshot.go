package policy

import (
	"sort"
	"time"

	"github.com/veritract/veritract/internal/contracts"
	"github.com/veritract/veritract/internal/delegation"
	"github.com/veritract/veritract/internal/kb"
	"github.com/veritract/veritract/internal/org"
	"github.com/veritract/veritract/internal/shared"
)

// Snapshot is one immutable, versioned view of everything an evaluation
// reads: policies, the org index, delegations, KB grants, and contract
// visibility. An evaluation pins one snapshot at call start and never
// re-reads, so concurrent administrative edits cannot tear a decision.
type Snapshot struct {
	version     int64
	loadedAt    time.Time
	orgIndex    *org.Index
	actors      map[string]org.Actor
	positions   []org.Position
	delegations *delegation.Resolver
	policies    []AccessPolicy
	kbOrg       []kb.OrgAccess
	kbUser      []kb.UserAccess
	visibility  map[string]contracts.Visibility
}

// SnapshotData carries the raw load for assembly. TreeVersion is the org
// forest generation, counted independently of the policy snapshot version.
type SnapshotData struct {
	Version     int64
	TreeVersion int64
	Units       []org.Unit
	Actors      []org.Actor
	Positions   []org.Position
	Delegations []delegation.Delegation
	Policies    []AccessPolicy
	KBOrg       []kb.OrgAccess
	KBUser      []kb.UserAccess
	Visibility  []contracts.Visibility
}

// NewSnapshot assembles an immutable snapshot from loaded data.
func NewSnapshot(data SnapshotData) (*Snapshot, error) {
	idx, err := org.BuildIndex(data.TreeVersion, data.Units)
	if err != nil {
		return nil, err
	}
	actors := make(map[string]org.Actor, len(data.Actors))
	for _, a := range data.Actors {
		actors[a.ID] = a
	}
	visibility := make(map[string]contracts.Visibility, len(data.Visibility))
	for _, v := range data.Visibility {
		visibility[v.ContractID] = v
	}
	active := make([]AccessPolicy, 0, len(data.Policies))
	for _, p := range data.Policies {
		if p.Superseded || p.Version > data.Version {
			continue
		}
		active = append(active, p)
	}
	return &Snapshot{
		version:     data.Version,
		loadedAt:    time.Now().UTC(),
		orgIndex:    idx,
		actors:      actors,
		positions:   data.Positions,
		delegations: delegation.NewResolver(data.Delegations),
		policies:    active,
		kbOrg:       data.KBOrg,
		kbUser:      data.KBUser,
		visibility:  visibility,
	}, nil
}

// Version identifies this snapshot generation.
func (s *Snapshot) Version() int64 { return s.version }

// OrgIndex exposes subtree containment pinned to this snapshot.
func (s *Snapshot) OrgIndex() *org.Index { return s.orgIndex }

// Actor looks up an actor by id.
func (s *Snapshot) Actor(id string) (org.Actor, bool) {
	a, ok := s.actors[id]
	return a, ok
}

// Positions returns every position seat in this snapshot.
func (s *Snapshot) Positions() []org.Position { return s.positions }

// Delegations exposes the delegation resolver pinned to this snapshot.
func (s *Snapshot) Delegations() *delegation.Resolver { return s.delegations }

// Visibility looks up contract visibility attributes.
func (s *Snapshot) Visibility(contractID string) (contracts.Visibility, bool) {
	v, ok := s.visibility[contractID]
	return v, ok
}

// KBOrgGrants returns org-subtree KB grants for a knowledge base.
func (s *Snapshot) KBOrgGrants(kbID string) []kb.OrgAccess {
	var out []kb.OrgAccess
	for _, g := range s.kbOrg {
		if g.KBID == kbID {
			out = append(out, g)
		}
	}
	return out
}

// KBUserGrants returns single-user KB grants for a knowledge base.
func (s *Snapshot) KBUserGrants(kbID string) []kb.UserAccess {
	var out []kb.UserAccess
	for _, g := range s.kbUser {
		if g.KBID == kbID {
			out = append(out, g)
		}
	}
	return out
}

// Matching returns the active policies covering (domain, resourceType,
// action) through any of the candidate scopes, ordered by specificity:
// user before role before org subtree before tenant default. An org-scoped
// policy matches when one of the candidate org units lies within the
// policy's subtree.
func (s *Snapshot) Matching(domain shared.Domain, tenantID, resourceType, action string, candidates []delegation.EffectiveScope) []Match {
	var matches []Match
	for _, p := range s.policies {
		if p.Domain != domain || p.TenantID != tenantID {
			continue
		}
		if p.ResourceType != resourceType || p.Action != action {
			continue
		}
		if via, ok := s.scopeCovers(p.Scope, candidates); ok {
			matches = append(matches, Match{Policy: p, Specificity: p.Scope.Specificity(), ViaDelegation: via})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Specificity > matches[j].Specificity
	})
	return matches
}

func (s *Snapshot) scopeCovers(policyScope shared.Scope, candidates []delegation.EffectiveScope) (string, bool) {
	for _, c := range candidates {
		if c.Scope.TenantID != policyScope.TenantID {
			continue
		}
		switch policyScope.Kind {
		case shared.ScopeUser:
			if c.Scope.Kind == shared.ScopeUser && c.Scope.UserID == policyScope.UserID {
				return c.ViaDelegation, true
			}
		case shared.ScopeRole:
			if c.Scope.Kind == shared.ScopeRole && c.Scope.Role == policyScope.Role {
				return c.ViaDelegation, true
			}
		case shared.ScopeOrgUnit:
			if c.Scope.Kind == shared.ScopeOrgUnit && s.orgIndex.IsWithin(c.Scope.OrgUnitID, policyScope.OrgUnitID) {
				return c.ViaDelegation, true
			}
		case shared.ScopeTenant:
			if c.Scope.Kind == shared.ScopeTenant {
				return c.ViaDelegation, true
			}
		}
	}
	return "", false
}
