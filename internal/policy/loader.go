package policy

import (
	"context"
	"fmt"

	"github.com/veritract/veritract/internal/contracts"
	"github.com/veritract/veritract/internal/delegation"
	"github.com/veritract/veritract/internal/kb"
	"github.com/veritract/veritract/internal/org"
)

// OrgSource loads organizational data for snapshot assembly.
type OrgSource interface {
	TreeVersion(ctx context.Context) (int64, error)
	ListUnits(ctx context.Context) ([]org.Unit, error)
	ListPositions(ctx context.Context) ([]org.Position, error)
	ListActors(ctx context.Context) ([]org.Actor, error)
}

// DelegationSource loads delegation records.
type DelegationSource interface {
	List(ctx context.Context) ([]delegation.Delegation, error)
}

// PolicySource loads policy rows.
type PolicySource interface {
	List(ctx context.Context) ([]AccessPolicy, error)
}

// KBSource loads knowledge-base grants.
type KBSource interface {
	ListOrgAccess(ctx context.Context) ([]kb.OrgAccess, error)
	ListUserAccess(ctx context.Context) ([]kb.UserAccess, error)
}

// VisibilitySource loads contract visibility rows.
type VisibilitySource interface {
	List(ctx context.Context) ([]contracts.Visibility, error)
}

// SnapshotLoader assembles snapshots from the persistence layer.
type SnapshotLoader struct {
	versions   VersionSource
	org        OrgSource
	deleg      DelegationSource
	policies   PolicySource
	kbGrants   KBSource
	visibility VisibilitySource
}

// NewSnapshotLoader constructs the loader.
func NewSnapshotLoader(versions VersionSource, orgSrc OrgSource, delegSrc DelegationSource, policySrc PolicySource, kbSrc KBSource, visSrc VisibilitySource) *SnapshotLoader {
	return &SnapshotLoader{
		versions:   versions,
		org:        orgSrc,
		deleg:      delegSrc,
		policies:   policySrc,
		kbGrants:   kbSrc,
		visibility: visSrc,
	}
}

// Load reads the version counter first, then the data. Writers bump the
// counter only after their data is committed, so the assembled snapshot
// contains at least everything the labeled version promises.
func (l *SnapshotLoader) Load(ctx context.Context) (*Snapshot, error) {
	version, err := l.versions.CurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: load version: %w", err)
	}
	treeVersion, err := l.org.TreeVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: load org tree version: %w", err)
	}
	data := SnapshotData{Version: version, TreeVersion: treeVersion}

	if data.Units, err = l.org.ListUnits(ctx); err != nil {
		return nil, fmt.Errorf("policy: load units: %w", err)
	}
	if data.Positions, err = l.org.ListPositions(ctx); err != nil {
		return nil, fmt.Errorf("policy: load positions: %w", err)
	}
	if data.Actors, err = l.org.ListActors(ctx); err != nil {
		return nil, fmt.Errorf("policy: load actors: %w", err)
	}
	if data.Delegations, err = l.deleg.List(ctx); err != nil {
		return nil, fmt.Errorf("policy: load delegations: %w", err)
	}
	if data.Policies, err = l.policies.List(ctx); err != nil {
		return nil, fmt.Errorf("policy: load policies: %w", err)
	}
	if data.KBOrg, err = l.kbGrants.ListOrgAccess(ctx); err != nil {
		return nil, fmt.Errorf("policy: load kb org grants: %w", err)
	}
	if data.KBUser, err = l.kbGrants.ListUserAccess(ctx); err != nil {
		return nil, fmt.Errorf("policy: load kb user grants: %w", err)
	}
	if data.Visibility, err = l.visibility.List(ctx); err != nil {
		return nil, fmt.Errorf("policy: load visibility: %w", err)
	}
	snap, err := NewSnapshot(data)
	if err != nil {
		return nil, err
	}
	// An org-tree rebuild mid-load could pair new units with old grants;
	// fail the load and let the next Current() assemble a clean one.
	current, err := l.org.TreeVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: reread org tree version: %w", err)
	}
	if err := snap.OrgIndex().CheckVersion(current); err != nil {
		return nil, fmt.Errorf("policy: org tree moved during load: %w", err)
	}
	return snap, nil
}
