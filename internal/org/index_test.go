package org

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veritract/veritract/internal/shared"
)

func testUnits() []Unit {
	return []Unit{
		{ID: "root", TenantID: "t1", Name: "Acme", Path: "root"},
		{ID: "div-a", TenantID: "t1", ParentID: "root", Name: "Division A", Path: "root/div-a"},
		{ID: "team-a1", TenantID: "t1", ParentID: "div-a", Name: "Team A1", Path: "root/div-a/team-a1"},
		{ID: "div-b", TenantID: "t1", ParentID: "root", Name: "Division B", Path: "root/div-b"},
	}
}

func TestIsWithin(t *testing.T) {
	idx, err := BuildIndex(1, testUnits())
	require.NoError(t, err)

	require.True(t, idx.IsWithin("div-a", "div-a"), "a unit is within itself")
	require.True(t, idx.IsWithin("team-a1", "div-a"))
	require.True(t, idx.IsWithin("team-a1", "root"))
	require.False(t, idx.IsWithin("div-b", "div-a"))
	require.False(t, idx.IsWithin("div-a", "team-a1"), "containment is directional")
	require.False(t, idx.IsWithin("ghost", "root"), "unknown units are outside every scope")
	require.False(t, idx.IsWithin("ghost", "ghost"))
}

func TestIsWithinNoPrefixFalsePositive(t *testing.T) {
	idx, err := BuildIndex(1, []Unit{
		{ID: "div", TenantID: "t1", Path: "div"},
		{ID: "div-ops", TenantID: "t1", Path: "div-ops"},
	})
	require.NoError(t, err)

	// "div-ops" shares a string prefix with "div" but is a sibling.
	require.False(t, idx.IsWithin("div-ops", "div"))
}

func TestBuildIndexValidation(t *testing.T) {
	_, err := BuildIndex(1, []Unit{{ID: "a", TenantID: "t1", Path: "b/c"}})
	require.Error(t, err, "path must terminate in the unit's own id")

	_, err = BuildIndex(1, []Unit{
		{ID: "a", TenantID: "t1", Path: "a"},
		{ID: "a", TenantID: "t1", Path: "a"},
	})
	require.Error(t, err, "duplicate ids rejected")

	_, err = BuildIndex(1, []Unit{{ID: "", TenantID: "t1"}})
	require.Error(t, err)
}

func TestCheckVersion(t *testing.T) {
	idx, err := BuildIndex(7, testUnits())
	require.NoError(t, err)

	require.NoError(t, idx.CheckVersion(7))
	require.ErrorIs(t, idx.CheckVersion(6), shared.ErrStaleSnapshot)
}
