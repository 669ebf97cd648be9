package contracts

import (
	"context"
	"fmt"

	"github.com/veritract/veritract/internal/seclevel"
)

// Store is the persistence surface the service needs.
type Store interface {
	SetLevel(ctx context.Context, contractID, tenantID, orgUnitID, level string) error
	AddExplicitGrant(ctx context.Context, contractID, userID, action string) error
}

// VersionBumper publishes a new snapshot version after a committed write.
type VersionBumper interface {
	BumpVersion(ctx context.Context) (int64, error)
}

// Service owns administrative writes for contract visibility.
type Service struct {
	store    Store
	levels   *seclevel.Hierarchy
	versions VersionBumper
}

// NewService constructs the visibility admin service.
func NewService(store Store, levels *seclevel.Hierarchy, versions VersionBumper) *Service {
	return &Service{store: store, levels: levels, versions: versions}
}

// SetLevelInput carries a classification change.
type SetLevelInput struct {
	ContractID    string `json:"contract_id" validate:"required"`
	TenantID      string `json:"tenant_id" validate:"required"`
	OrgUnitID     string `json:"org_unit_id" validate:"required"`
	SecurityLevel string `json:"security_level" validate:"required"`
}

// GrantInput carries an explicit per-document grant.
type GrantInput struct {
	ContractID string `json:"contract_id" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
	Action     string `json:"action" validate:"required,oneof=read write"`
}

// SetLevel validates the level against the loaded hierarchy and persists
// the classification, then bumps the snapshot version.
func (s *Service) SetLevel(ctx context.Context, input SetLevelInput) error {
	if _, err := s.levels.Lookup(input.SecurityLevel); err != nil {
		return err
	}
	if err := s.store.SetLevel(ctx, input.ContractID, input.TenantID, input.OrgUnitID, input.SecurityLevel); err != nil {
		return err
	}
	if _, err := s.versions.BumpVersion(ctx); err != nil {
		return fmt.Errorf("contracts: bump version: %w", err)
	}
	return nil
}

// AddGrant records an additive explicit grant and bumps the snapshot
// version. Grants never touch the classification itself.
func (s *Service) AddGrant(ctx context.Context, input GrantInput) error {
	if err := s.store.AddExplicitGrant(ctx, input.ContractID, input.UserID, input.Action); err != nil {
		return err
	}
	if _, err := s.versions.BumpVersion(ctx); err != nil {
		return fmt.Errorf("contracts: bump version: %w", err)
	}
	return nil
}
