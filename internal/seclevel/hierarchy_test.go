package seclevel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLevels() []Level {
	return []Level{
		{Name: "TopSecret", Rank: 0},
		{Name: "Secret", Rank: 1},
		{Name: "Confidential", Rank: 2},
		{Name: "Internal", Rank: 3},
		{Name: "Public", Rank: 4},
	}
}

func TestSatisfiesTotalOrder(t *testing.T) {
	h, err := New(testLevels())
	require.NoError(t, err)

	secret, err := h.Lookup("Secret")
	require.NoError(t, err)
	confidential, err := h.Lookup("Confidential")
	require.NoError(t, err)

	require.True(t, h.Satisfies(secret, confidential), "higher clearance views lower classification")
	require.True(t, h.Satisfies(secret, secret), "clearance views its own level")
	require.False(t, h.Satisfies(confidential, secret), "lower clearance never views higher classification")
}

func TestUnknownLevelIsLoadTimeError(t *testing.T) {
	h, err := New(testLevels())
	require.NoError(t, err)

	_, err = h.Lookup("Restricted")
	require.ErrorIs(t, err, ErrUnknownLevel)
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Level{{Name: "A", Rank: 0}, {Name: "A", Rank: 1}})
	require.Error(t, err)

	_, err = New([]Level{{Name: "A", Rank: 0}, {Name: "B", Rank: 0}})
	require.Error(t, err, "shared rank would make comparisons ambiguous")

	_, err = New(nil)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "levels.yaml")
	content := []byte("levels:\n  - name: Secret\n    rank: 1\n  - name: Public\n    rank: 4\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	h, err := LoadFile(path)
	require.NoError(t, err)

	levels := h.Levels()
	require.Len(t, levels, 2)
	require.Equal(t, "Secret", levels[0].Name, "ordered most privileged first")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
