package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayRole(t *testing.T) {
	require.Equal(t, SuperuserRole, DisplayRole(true, []string{"contract_manager"}), "superuser short-circuits")
	require.Equal(t, "Contract Manager", DisplayRole(false, []string{"contract_manager", "viewer"}), "first role wins")
	require.Equal(t, "Viewer", DisplayRole(false, []string{"", " ", "viewer"}), "blank codes skipped")
	require.Equal(t, "", DisplayRole(false, nil))
}
