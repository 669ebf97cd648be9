package kb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	UpsertOrgAccess(ctx context.Context, g OrgAccess) error
	UpsertUserAccess(ctx context.Context, g UserAccess) error
}

// VersionBumper publishes a new snapshot version after a committed write.
type VersionBumper interface {
	BumpVersion(ctx context.Context) (int64, error)
}

// Service owns administrative writes for knowledge-base grants.
type Service struct {
	store    Store
	versions VersionBumper
}

// NewService constructs the KB grant admin service.
func NewService(store Store, versions VersionBumper) *Service {
	return &Service{store: store, versions: versions}
}

// OrgAccessInput carries an org-subtree grant request.
type OrgAccessInput struct {
	TenantID  string `json:"tenant_id" validate:"required"`
	KBID      string `json:"kb_id" validate:"required"`
	OrgUnitID string `json:"org_unit_id" validate:"required"`
	CanQuery  bool   `json:"can_query"`
	CanManage bool   `json:"can_manage"`
}

// UserAccessInput carries a single-user grant request.
type UserAccessInput struct {
	TenantID  string `json:"tenant_id" validate:"required"`
	KBID      string `json:"kb_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	CanQuery  bool   `json:"can_query"`
	CanManage bool   `json:"can_manage"`
}

// GrantOrg persists an org-subtree grant and bumps the snapshot version.
func (s *Service) GrantOrg(ctx context.Context, input OrgAccessInput) (OrgAccess, error) {
	g := OrgAccess{
		ID:        uuid.NewString(),
		TenantID:  input.TenantID,
		KBID:      input.KBID,
		OrgUnitID: input.OrgUnitID,
		CanQuery:  input.CanQuery,
		CanManage: input.CanManage,
	}
	if err := s.store.UpsertOrgAccess(ctx, g); err != nil {
		return OrgAccess{}, err
	}
	if _, err := s.versions.BumpVersion(ctx); err != nil {
		return OrgAccess{}, fmt.Errorf("kb: bump version: %w", err)
	}
	return g, nil
}

// GrantUser persists a single-user grant and bumps the snapshot version.
func (s *Service) GrantUser(ctx context.Context, input UserAccessInput) (UserAccess, error) {
	g := UserAccess{
		ID:        uuid.NewString(),
		TenantID:  input.TenantID,
		KBID:      input.KBID,
		UserID:    input.UserID,
		CanQuery:  input.CanQuery,
		CanManage: input.CanManage,
	}
	if err := s.store.UpsertUserAccess(ctx, g); err != nil {
		return UserAccess{}, err
	}
	if _, err := s.versions.BumpVersion(ctx); err != nil {
		return UserAccess{}, fmt.Errorf("kb: bump version: %w", err)
	}
	return g, nil
}
