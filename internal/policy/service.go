package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veritract/veritract/internal/shared"
)

// ErrInvalidScope is the shared malformed-scope sentinel; the delegation
// service rejects the same shapes through it.
var ErrInvalidScope = shared.ErrInvalidScope

// AdminStore is the persistence surface the service needs.
type AdminStore interface {
	Create(ctx context.Context, p AccessPolicy) error
	Supersede(ctx context.Context, id string) error
}

// VersionBumper publishes a new snapshot version after a committed write.
type VersionBumper interface {
	BumpVersion(ctx context.Context) (int64, error)
}

// Service owns administrative writes for access policies.
type Service struct {
	store    AdminStore
	versions VersionBumper
	now      func() time.Time
}

// NewService constructs the policy admin service.
func NewService(store AdminStore, versions VersionBumper) *Service {
	return &Service{store: store, versions: versions, now: time.Now}
}

// CreateInput carries a new policy.
type CreateInput struct {
	TenantID     string `json:"tenant_id" validate:"required"`
	ScopeKind    string `json:"scope_kind" validate:"required,oneof=user role org_unit tenant"`
	ScopeUserID  string `json:"scope_user_id,omitempty"`
	ScopeRole    string `json:"scope_role,omitempty"`
	ScopeOrgID   string `json:"scope_org_unit_id,omitempty"`
	Domain       string `json:"domain" validate:"required,oneof=contracts knowledge_base"`
	ResourceType string `json:"resource_type" validate:"required"`
	Action       string `json:"action" validate:"required"`
	Effect       string `json:"effect" validate:"required,oneof=allow deny"`
}

// Create validates, persists, and publishes a policy. The bumped version
// becomes the policy's effective-from version.
func (s *Service) Create(ctx context.Context, input CreateInput) (AccessPolicy, error) {
	scope := shared.Scope{
		Kind:      shared.ScopeKind(input.ScopeKind),
		TenantID:  input.TenantID,
		UserID:    input.ScopeUserID,
		Role:      input.ScopeRole,
		OrgUnitID: input.ScopeOrgID,
	}
	if err := scope.Validate(); err != nil {
		return AccessPolicy{}, err
	}

	p := AccessPolicy{
		ID:           uuid.NewString(),
		TenantID:     input.TenantID,
		Scope:        scope,
		Domain:       shared.Domain(input.Domain),
		ResourceType: input.ResourceType,
		Action:       input.Action,
		Effect:       Effect(input.Effect),
		CreatedAt:    s.now().UTC(),
	}
	version, err := s.versions.BumpVersion(ctx)
	if err != nil {
		return AccessPolicy{}, fmt.Errorf("policy: bump version: %w", err)
	}
	p.Version = version
	if err := s.store.Create(ctx, p); err != nil {
		return AccessPolicy{}, err
	}
	// Second bump publishes the committed row; readers pinned between the
	// two bumps simply reload once more.
	if _, err := s.versions.BumpVersion(ctx); err != nil {
		return AccessPolicy{}, fmt.Errorf("policy: publish: %w", err)
	}
	return p, nil
}

// Supersede retires a policy and publishes the change.
func (s *Service) Supersede(ctx context.Context, id string) error {
	if err := s.store.Supersede(ctx, id); err != nil {
		return err
	}
	if _, err := s.versions.BumpVersion(ctx); err != nil {
		return fmt.Errorf("policy: bump version: %w", err)
	}
	return nil
}
