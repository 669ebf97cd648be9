package policy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/veritract/veritract/internal/delegation"
	"github.com/veritract/veritract/internal/org"
	"github.com/veritract/veritract/internal/shared"
)

type stubVersions struct {
	mu      sync.Mutex
	version int64
	err     error
}

func (s *stubVersions) CurrentVersion(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.err
}

func (s *stubVersions) bump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
}

type countingLoader struct {
	mu       sync.Mutex
	loads    int
	versions *stubVersions
	err      error
}

func (l *countingLoader) Load(ctx context.Context) (*Snapshot, error) {
	l.mu.Lock()
	l.loads++
	l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	ver, _ := l.versions.CurrentVersion(ctx)
	return NewSnapshot(SnapshotData{Version: ver})
}

func (l *countingLoader) loadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

func TestStoreCachesUntilVersionAdvances(t *testing.T) {
	versions := &stubVersions{version: 3}
	loader := &countingLoader{versions: versions}
	store := NewStore(loader, versions, nil)

	first, err := store.Current(context.Background())
	require.NoError(t, err)
	second, err := store.Current(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, loader.loadCount())

	versions.bump()
	third, err := store.Current(context.Background())
	require.NoError(t, err)
	require.NotSame(t, first, third)
	require.EqualValues(t, 4, third.Version())
	require.Equal(t, 2, loader.loadCount())
}

func TestStoreFailsClosedWhenVersionUnknown(t *testing.T) {
	versions := &stubVersions{err: errors.New("redis and postgres down")}
	store := NewStore(&countingLoader{versions: versions}, versions, nil)

	_, err := store.Current(context.Background())
	require.Error(t, err, "a stale cached snapshot is never served silently")
}

func TestStoreFailsWhenLoadFails(t *testing.T) {
	versions := &stubVersions{version: 1}
	loader := &countingLoader{versions: versions, err: errors.New("pool exhausted")}
	store := NewStore(loader, versions, nil)

	_, err := store.Current(context.Background())
	require.Error(t, err)
}

func TestVersionsRedisFastPath(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	require.NoError(t, mr.Set("veritract:snapshot:version", "42"))

	// A nil pool proves the mirror short-circuits the authoritative read.
	v := NewVersions(nil, rdb)
	ver, err := v.CurrentVersion(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 42, ver)
}

func TestSnapshotMatchingOrdersBySpecificity(t *testing.T) {
	mkPolicy := func(id string, scope shared.Scope, effect Effect) AccessPolicy {
		return AccessPolicy{
			ID: id, TenantID: "t1", Scope: scope,
			Domain: shared.DomainContracts, ResourceType: "contract", Action: "read",
			Effect: effect, Version: 1, CreatedAt: time.Now().UTC(),
		}
	}
	snap, err := NewSnapshot(SnapshotData{
		Version: 2,
		Units: []org.Unit{
			{ID: "corp", TenantID: "t1", Path: "corp"},
			{ID: "div-a", TenantID: "t1", ParentID: "corp", Path: "corp/div-a"},
		},
		Policies: []AccessPolicy{
			mkPolicy("p-tenant", shared.Scope{Kind: shared.ScopeTenant, TenantID: "t1"}, EffectAllow),
			mkPolicy("p-user", shared.Scope{Kind: shared.ScopeUser, TenantID: "t1", UserID: "alice"}, EffectDeny),
			mkPolicy("p-org", shared.Scope{Kind: shared.ScopeOrgUnit, TenantID: "t1", OrgUnitID: "corp"}, EffectAllow),
			mkPolicy("p-tenant-deny", shared.Scope{Kind: shared.ScopeTenant, TenantID: "t1"}, EffectDeny),
		},
	})
	require.NoError(t, err)

	candidates := []delegation.EffectiveScope{
		{Scope: shared.Scope{Kind: shared.ScopeUser, TenantID: "t1", UserID: "alice"}},
		{Scope: shared.Scope{Kind: shared.ScopeOrgUnit, TenantID: "t1", OrgUnitID: "div-a"}},
		{Scope: shared.Scope{Kind: shared.ScopeTenant, TenantID: "t1"}},
	}
	matches := snap.Matching(shared.DomainContracts, "t1", "contract", "read", candidates)
	require.Len(t, matches, 4)
	require.Equal(t, "p-user", matches[0].Policy.ID)
	require.Equal(t, "p-org", matches[1].Policy.ID)
}

func TestSnapshotFiltersSupersededAndFuturePolicies(t *testing.T) {
	snap, err := NewSnapshot(SnapshotData{
		Version: 5,
		Policies: []AccessPolicy{
			{ID: "live", TenantID: "t1", Scope: shared.Scope{Kind: shared.ScopeTenant, TenantID: "t1"},
				Domain: shared.DomainContracts, ResourceType: "contract", Action: "read",
				Effect: EffectAllow, Version: 5},
			{ID: "retired", TenantID: "t1", Scope: shared.Scope{Kind: shared.ScopeTenant, TenantID: "t1"},
				Domain: shared.DomainContracts, ResourceType: "contract", Action: "read",
				Effect: EffectAllow, Version: 4, Superseded: true},
			{ID: "future", TenantID: "t1", Scope: shared.Scope{Kind: shared.ScopeTenant, TenantID: "t1"},
				Domain: shared.DomainContracts, ResourceType: "contract", Action: "read",
				Effect: EffectAllow, Version: 6},
		},
	})
	require.NoError(t, err)

	candidates := []delegation.EffectiveScope{
		{Scope: shared.Scope{Kind: shared.ScopeTenant, TenantID: "t1"}},
	}
	matches := snap.Matching(shared.DomainContracts, "t1", "contract", "read", candidates)
	require.Len(t, matches, 1)
	require.Equal(t, "live", matches[0].Policy.ID)
}
