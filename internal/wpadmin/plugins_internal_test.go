package wpadmin

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPluginControlSelectorsFollowListingIDs(t *testing.T) {
	require.Equal(t, "#activate-hello-dolly", fmt.Sprintf(activateControlFormat, "hello-dolly"))
	require.Equal(t, "#deactivate-hello-dolly", fmt.Sprintf(deactivateControlFormat, "hello-dolly"))
	require.Equal(t, "#delete-hello-dolly", fmt.Sprintf(deleteControlFormat, "hello-dolly"))
}

func TestDeactivationQuirkTable(t *testing.T) {
	elementorQuirk, hasElementorQuirk := deactivationQuirks["elementor"]
	require.True(t, hasElementorQuirk)
	require.NotEmpty(t, elementorQuirk.dialogSelector)
	require.NotEmpty(t, elementorQuirk.confirmSelector)

	_, hasUnknownQuirk := deactivationQuirks["hello-dolly"]
	require.False(t, hasUnknownQuirk)
}
