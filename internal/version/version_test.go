package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), runtime.Version())

	fields := LogFields()
	require.Len(t, fields, 6)
	require.Equal(t, Version, fields[1])
}

func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "sleep-alarm"}
	AttachCobraVersionCommand(root)

	var out strings.Builder

	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "commit:")

	out.Reset()
	root.SetArgs([]string{"version", "--short"})

	require.NoError(t, root.Execute())
	require.Equal(t, Short()+"\n", out.String())
}
