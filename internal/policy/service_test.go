package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryPolicyStore struct {
	created    []AccessPolicy
	superseded []string
}

func (m *memoryPolicyStore) Create(_ context.Context, p AccessPolicy) error {
	m.created = append(m.created, p)
	return nil
}

func (m *memoryPolicyStore) Supersede(_ context.Context, id string) error {
	m.superseded = append(m.superseded, id)
	return nil
}

type countingBumper struct {
	bumps int64
}

func (b *countingBumper) BumpVersion(context.Context) (int64, error) {
	b.bumps++
	return b.bumps, nil
}

func TestCreatePolicyReservesThenPublishes(t *testing.T) {
	store := &memoryPolicyStore{}
	bumper := &countingBumper{}
	svc := NewService(store, bumper)

	created, err := svc.Create(context.Background(), CreateInput{
		TenantID: "t1", ScopeKind: "org_unit", ScopeOrgID: "div-a",
		Domain: "contracts", ResourceType: "contract", Action: "read", Effect: "allow",
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	require.EqualValues(t, 1, created.Version, "policy carries the reserved version")
	require.EqualValues(t, 2, bumper.bumps, "reserve bump plus publish bump")
}

func TestCreatePolicyRejectsMalformedScopes(t *testing.T) {
	svc := NewService(&memoryPolicyStore{}, &countingBumper{})

	for _, tc := range []struct {
		name  string
		input CreateInput
	}{
		{"user scope without user_id", CreateInput{
			TenantID: "t1", ScopeKind: "user",
			Domain: "contracts", ResourceType: "contract", Action: "read", Effect: "allow",
		}},
		{"role scope with org selector", CreateInput{
			TenantID: "t1", ScopeKind: "role", ScopeRole: "manager", ScopeOrgID: "div-a",
			Domain: "contracts", ResourceType: "contract", Action: "read", Effect: "allow",
		}},
		{"tenant scope with user selector", CreateInput{
			TenantID: "t1", ScopeKind: "tenant", ScopeUserID: "alice",
			Domain: "contracts", ResourceType: "contract", Action: "read", Effect: "allow",
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.ErrorIs(t, err, ErrInvalidScope)
		})
	}
}

func TestSupersedeBumpsVersion(t *testing.T) {
	store := &memoryPolicyStore{}
	bumper := &countingBumper{}
	svc := NewService(store, bumper)

	require.NoError(t, svc.Supersede(context.Background(), "pol-1"))
	require.Equal(t, []string{"pol-1"}, store.superseded)
	require.EqualValues(t, 1, bumper.bumps)
}
