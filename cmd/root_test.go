package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmd_Exists verifies the root command is configured.
func TestRootCmd_Exists(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "vtdb", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

// TestRootCmd_Subcommands verifies every campaign operation is
// registered.
func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{
		"init", "migrate", "register", "sweep", "run", "status", "prune",
	}

	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name, "missing subcommand %s", name)
	}
}

// TestRootCmd_DataFlag verifies the persistent data-directory flag.
func TestRootCmd_DataFlag(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("data")
	require.NotNil(t, f)
	assert.Equal(t, "d", f.Shorthand)
}

func TestKindList(t *testing.T) {
	list := kindList()
	assert.Contains(t, list, "config")
	assert.Contains(t, list, "custom_code")
	assert.Contains(t, list, "intracellular")
}
