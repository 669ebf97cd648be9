package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veritract/veritract/internal/contracts"
	"github.com/veritract/veritract/internal/delegation"
	"github.com/veritract/veritract/internal/kb"
	"github.com/veritract/veritract/internal/org"
	"github.com/veritract/veritract/internal/shared"
)

// fakeOrgSource serves a scripted sequence of tree versions so a rebuild
// can land between the first read and the post-load recheck.
type fakeOrgSource struct {
	treeVersions []int64
	calls        int
	units        []org.Unit
}

func (f *fakeOrgSource) TreeVersion(context.Context) (int64, error) {
	v := f.treeVersions[f.calls]
	if f.calls < len(f.treeVersions)-1 {
		f.calls++
	}
	return v, nil
}

func (f *fakeOrgSource) ListUnits(context.Context) ([]org.Unit, error)         { return f.units, nil }
func (f *fakeOrgSource) ListPositions(context.Context) ([]org.Position, error) { return nil, nil }
func (f *fakeOrgSource) ListActors(context.Context) ([]org.Actor, error)       { return nil, nil }

type emptySources struct{}

func (emptySources) List(context.Context) ([]delegation.Delegation, error) { return nil, nil }

type emptyPolicySource struct{}

func (emptyPolicySource) List(context.Context) ([]AccessPolicy, error) { return nil, nil }

type emptyKBSource struct{}

func (emptyKBSource) ListOrgAccess(context.Context) ([]kb.OrgAccess, error)   { return nil, nil }
func (emptyKBSource) ListUserAccess(context.Context) ([]kb.UserAccess, error) { return nil, nil }

type emptyVisibilitySource struct{}

func (emptyVisibilitySource) List(context.Context) ([]contracts.Visibility, error) {
	return nil, nil
}

func newTestLoader(orgSrc *fakeOrgSource) *SnapshotLoader {
	return NewSnapshotLoader(
		&stubVersions{version: 5},
		orgSrc,
		emptySources{},
		emptyPolicySource{},
		emptyKBSource{},
		emptyVisibilitySource{},
	)
}

func TestLoaderPinsOrgTreeVersion(t *testing.T) {
	orgSrc := &fakeOrgSource{
		treeVersions: []int64{3},
		units:        []org.Unit{{ID: "corp", TenantID: "t1", Path: "corp"}},
	}
	snap, err := newTestLoader(orgSrc).Load(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5, snap.Version())
	require.EqualValues(t, 3, snap.OrgIndex().Version())
	require.True(t, snap.OrgIndex().IsWithin("corp", "corp"))
}

func TestLoaderRejectsTreeRebuiltMidLoad(t *testing.T) {
	orgSrc := &fakeOrgSource{
		treeVersions: []int64{3, 4},
		units:        []org.Unit{{ID: "corp", TenantID: "t1", Path: "corp"}},
	}
	_, err := newTestLoader(orgSrc).Load(context.Background())
	require.ErrorIs(t, err, shared.ErrStaleSnapshot)
}
