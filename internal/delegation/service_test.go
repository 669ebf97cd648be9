package delegation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veritract/veritract/internal/shared"
)

func TestServiceCreateRejectsMalformedScopes(t *testing.T) {
	valid := CreateInput{
		TenantID: "t1", DelegatorID: "alice", DelegateID: "bob",
		ScopeKind: "org_unit", ScopeOrgID: "div-a",
		ValidFrom: t0, ValidUntil: t1, MaxDepth: 1,
	}

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{
			name:   "org_unit scope without org_unit_id",
			mutate: func(in *CreateInput) { in.ScopeOrgID = "" },
		},
		{
			name: "user scope carrying a role",
			mutate: func(in *CreateInput) {
				in.ScopeKind = "user"
				in.ScopeOrgID = ""
				in.ScopeUserID = "alice"
				in.ScopeRole = "manager"
			},
		},
		{
			name: "tenant scope with a selector",
			mutate: func(in *CreateInput) {
				in.ScopeKind = "tenant"
				in.ScopeOrgID = ""
				in.ScopeUserID = "alice"
			},
		},
		{
			name:   "unknown scope kind",
			mutate: func(in *CreateInput) { in.ScopeKind = "department" },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memoryDelegationStore{}
			bumper := &memoryVersionBumper{}
			svc := NewService(store, bumper)

			input := valid
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), input)
			require.ErrorIs(t, err, shared.ErrInvalidScope)
			require.Empty(t, store.delegations)
			require.Zero(t, bumper.version, "rejected write does not bump")
		})
	}
}

func TestServiceCreateCarriesValidatedScope(t *testing.T) {
	store := &memoryDelegationStore{}
	svc := NewService(store, &memoryVersionBumper{})

	d, err := svc.Create(context.Background(), CreateInput{
		TenantID: "t1", DelegatorID: "alice", DelegateID: "bob",
		ScopeKind: "org_unit", ScopeOrgID: "div-a",
		ValidFrom: t0, ValidUntil: t1, MaxDepth: 1,
	})
	require.NoError(t, err)
	require.Len(t, store.delegations, 1)
	require.Equal(t, shared.ScopeOrgUnit, d.Scope.Kind)
	require.Equal(t, "t1", d.Scope.TenantID)
	require.Equal(t, "div-a", d.Scope.OrgUnitID)
}
