package iofs_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtrials/vtdb/internal/iofs"
	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/param"
)

func TestEnsureDirs(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, iofs.EnsureDirs(dataDir))

	dirs := []string{
		config.InputsDir(dataDir),
		config.OutputsDir(dataDir),
		config.BuildsDir(dataDir),
		config.LedgersDir(dataDir),
		config.LogDir(dataDir),
	}
	for _, kind := range param.AllKinds() {
		dirs = append(dirs, config.LocationDir(dataDir, string(kind), ""))
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	t.Run("idempotent", func(t *testing.T) {
		assert.NoError(t, iofs.EnsureDirs(dataDir))
	})
}

func TestEnsureConfigFile(t *testing.T) {
	dataDir := t.TempDir()
	path := config.ConfigFilePath(dataDir)

	require.NoError(t, iofs.EnsureConfigFile(dataDir))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, iofs.ConfigYAML, string(data))

	t.Run("keeps an existing file", func(t *testing.T) {
		err := os.WriteFile(path, []byte("run:\n  mode: hpc\n"), 0644)
		require.NoError(t, err)

		require.NoError(t, iofs.EnsureConfigFile(dataDir))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "run:\n  mode: hpc\n", string(data))
	})
}
