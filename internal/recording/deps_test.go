//go:build linux && !hotkey

package recording

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// listDeps returns the import graph of the package in the working directory
func listDeps(t *testing.T) []string {
	t.Helper()
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not available")
	}
	out, err := exec.Command(goBin, "list", "-deps", ".").Output()
	require.NoError(t, err)
	return strings.Fields(string(out))
}

func TestDoesNotLinkX11Hotkey(t *testing.T) {
	// golang.design/x/hotkey panics at init on Linux without a display
	require.NotContains(t, listDeps(t), "golang.design/x/hotkey")
}
