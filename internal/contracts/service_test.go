package contracts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veritract/veritract/internal/seclevel"
)

type memoryVisibilityStore struct {
	levels map[string]string
	grants []ExplicitGrant
}

func (m *memoryVisibilityStore) SetLevel(_ context.Context, contractID, _, _, level string) error {
	if m.levels == nil {
		m.levels = make(map[string]string)
	}
	m.levels[contractID] = level
	return nil
}

func (m *memoryVisibilityStore) AddExplicitGrant(_ context.Context, _, userID, action string) error {
	m.grants = append(m.grants, ExplicitGrant{UserID: userID, Action: action})
	return nil
}

type countingBumper struct {
	bumps int64
}

func (b *countingBumper) BumpVersion(context.Context) (int64, error) {
	b.bumps++
	return b.bumps, nil
}

func testHierarchy(t *testing.T) *seclevel.Hierarchy {
	t.Helper()
	h, err := seclevel.New([]seclevel.Level{
		{Name: "Secret", Rank: 1},
		{Name: "Public", Rank: 2},
	})
	require.NoError(t, err)
	return h
}

func TestSetLevelValidatesAgainstHierarchy(t *testing.T) {
	store := &memoryVisibilityStore{}
	bumper := &countingBumper{}
	svc := NewService(store, testHierarchy(t), bumper)

	err := svc.SetLevel(context.Background(), SetLevelInput{
		ContractID: "c1", TenantID: "t1", OrgUnitID: "div-a", SecurityLevel: "Secret",
	})
	require.NoError(t, err)
	require.Equal(t, "Secret", store.levels["c1"])
	require.EqualValues(t, 1, bumper.bumps)

	err = svc.SetLevel(context.Background(), SetLevelInput{
		ContractID: "c1", TenantID: "t1", OrgUnitID: "div-a", SecurityLevel: "Ultra",
	})
	require.ErrorIs(t, err, seclevel.ErrUnknownLevel)
	require.EqualValues(t, 1, bumper.bumps, "rejected writes publish nothing")
}

func TestAddGrantBumpsVersion(t *testing.T) {
	store := &memoryVisibilityStore{}
	bumper := &countingBumper{}
	svc := NewService(store, testHierarchy(t), bumper)

	err := svc.AddGrant(context.Background(), GrantInput{
		ContractID: "c1", UserID: "alice", Action: "read",
	})
	require.NoError(t, err)
	require.Len(t, store.grants, 1)
	require.EqualValues(t, 1, bumper.bumps)
}

func TestGrantedTo(t *testing.T) {
	v := Visibility{ExplicitGrants: []ExplicitGrant{{UserID: "alice", Action: "read"}}}
	require.True(t, v.GrantedTo("alice", "read"))
	require.False(t, v.GrantedTo("alice", "write"))
	require.False(t, v.GrantedTo("bob", "read"))
}
