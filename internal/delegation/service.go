package delegation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veritract/veritract/internal/shared"
)

var (
	// ErrCycle indicates the new delegation would close a delegation loop.
	ErrCycle = errors.New("delegation: cycle")
	// ErrInvalidWindow indicates valid_until precedes valid_from.
	ErrInvalidWindow = errors.New("delegation: valid_until before valid_from")
)

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context) ([]Delegation, error)
	Create(ctx context.Context, d Delegation) error
}

// VersionBumper publishes a new snapshot version after a committed write.
type VersionBumper interface {
	BumpVersion(ctx context.Context) (int64, error)
}

// Service owns administrative writes for delegations. Cycle detection
// happens here, at write time; the read-side resolver only bounds hops.
type Service struct {
	store    Store
	versions VersionBumper
	now      func() time.Time
}

// NewService constructs the delegation admin service.
func NewService(store Store, versions VersionBumper) *Service {
	return &Service{store: store, versions: versions, now: time.Now}
}

// CreateInput carries a new delegation request.
type CreateInput struct {
	TenantID    string    `json:"tenant_id" validate:"required"`
	DelegatorID string    `json:"delegator_id" validate:"required"`
	DelegateID  string    `json:"delegate_id" validate:"required,nefield=DelegatorID"`
	ScopeKind   string    `json:"scope_kind" validate:"required,oneof=user role org_unit tenant"`
	ScopeUserID string    `json:"scope_user_id,omitempty"`
	ScopeRole   string    `json:"scope_role,omitempty"`
	ScopeOrgID  string    `json:"scope_org_unit_id,omitempty"`
	ValidFrom   time.Time `json:"valid_from" validate:"required"`
	ValidUntil  time.Time `json:"valid_until" validate:"required"`
	MaxDepth    int       `json:"max_depth" validate:"omitempty,min=1,max=8"`
}

// Create validates and persists a delegation, then bumps the snapshot
// version so evaluations pick it up.
func (s *Service) Create(ctx context.Context, input CreateInput) (Delegation, error) {
	if input.ValidUntil.Before(input.ValidFrom) {
		return Delegation{}, ErrInvalidWindow
	}
	scope := shared.Scope{
		Kind:      shared.ScopeKind(input.ScopeKind),
		TenantID:  input.TenantID,
		UserID:    input.ScopeUserID,
		Role:      input.ScopeRole,
		OrgUnitID: input.ScopeOrgID,
	}
	if err := scope.Validate(); err != nil {
		return Delegation{}, err
	}
	existing, err := s.store.List(ctx)
	if err != nil {
		return Delegation{}, fmt.Errorf("delegation: list for cycle check: %w", err)
	}
	if wouldCycle(existing, input.DelegatorID, input.DelegateID, input.ValidFrom, input.ValidUntil) {
		return Delegation{}, ErrCycle
	}

	d := Delegation{
		ID:          uuid.NewString(),
		TenantID:    input.TenantID,
		DelegatorID: input.DelegatorID,
		DelegateID:  input.DelegateID,
		Scope:       scope,
		ValidFrom:   input.ValidFrom,
		ValidUntil:  input.ValidUntil,
		MaxDepth:    normalizeDepth(input.MaxDepth),
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.Create(ctx, d); err != nil {
		return Delegation{}, err
	}
	if _, err := s.versions.BumpVersion(ctx); err != nil {
		return Delegation{}, fmt.Errorf("delegation: bump version: %w", err)
	}
	return d, nil
}

// wouldCycle reports whether delegator is reachable from delegate through
// delegations whose windows overlap the new record's window.
func wouldCycle(existing []Delegation, delegatorID, delegateID string, from, until time.Time) bool {
	if delegatorID == delegateID {
		return true
	}
	edges := make(map[string][]string)
	for _, d := range existing {
		if d.ValidUntil.Before(from) || d.ValidFrom.After(until) {
			continue
		}
		edges[d.DelegatorID] = append(edges[d.DelegatorID], d.DelegateID)
	}
	// BFS from the new delegate; reaching the delegator closes a loop.
	queue := []string{delegateID}
	visited := map[string]struct{}{delegateID: {}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range edges[current] {
			if next == delegatorID {
				return true
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return false
}
