package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtrials/vtdb/pkg/config"
)

func TestPaths(t *testing.T) {
	dataDir := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "database file",
			fn:  config.DBFilePath,
			res: filepath.Join(dataDir, "vtdb.db"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(dataDir, "config.yaml"),
		},
		{
			msg: "inputs dir",
			fn:  config.InputsDir,
			res: filepath.Join(dataDir, "inputs"),
		},
		{
			msg: "outputs dir",
			fn:  config.OutputsDir,
			res: filepath.Join(dataDir, "outputs"),
		},
		{
			msg: "builds dir",
			fn:  config.BuildsDir,
			res: filepath.Join(dataDir, "builds"),
		},
		{
			msg: "ledgers dir",
			fn:  config.LedgersDir,
			res: filepath.Join(dataDir, "ledgers"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(dataDir, "logs"),
		},
	}

	for _, v := range tests {
		res := v.fn(dataDir)
		assert.Equal(t, v.res, res, v.msg)
	}

	assert.Equal(t,
		filepath.Join(dataDir, "inputs", "config", "base"),
		config.LocationDir(dataDir, "config", "base"),
	)
	assert.Equal(t,
		filepath.Join(dataDir, "outputs", "42"),
		config.SimulationDir(dataDir, 42),
	)
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		// Run defaults
		assert.Equal(t, "local", cfg.Run.Mode)
		assert.Equal(t, "final.xml", cfg.Run.Marker)
		assert.Empty(t, cfg.Run.PruneCategories)
		assert.False(t, cfg.Run.Wait)

		// Build defaults
		assert.Equal(t, "project", cfg.Build.Target)
		assert.Equal(t, runtime.NumCPU(), cfg.Build.MakeJobs)
		assert.Empty(t, cfg.Build.BaseSource)

		// HPC defaults
		assert.Equal(t, "24:00:00", cfg.HPC.TimeLimit)
		assert.Equal(t, "4G", cfg.HPC.Memory)

		// Log defaults
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
		assert.Empty(t, cfg.DataDir)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("applies valid options", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptRunMode("HPC "),
			config.OptRunMarker("done.txt"),
			config.OptRunPruneCategories([]string{"images", "logs"}),
			config.OptRunWait(true),
			config.OptBuildBaseSource("/opt/simulator"),
			config.OptBuildTarget("simulator"),
			config.OptBuildMakeJobs(4),
			config.OptBuildMacroFlags([]string{"ADDON_PHYSIBOSS"}),
			config.OptHPCPartition("compute"),
			config.OptHPCAccount("lab42"),
			config.OptHPCTimeLimit("4:00:00"),
			config.OptHPCMemory("8G"),
			config.OptLogFormat("text"),
			config.OptLogLevel("debug"),
			config.OptLogDestination("stderr"),
			config.OptJobsNumber(2),
			config.OptDataDir("/tmp/campaign"),
		})

		assert.Equal(t, "hpc", cfg.Run.Mode)
		assert.Equal(t, "done.txt", cfg.Run.Marker)
		assert.Equal(t, []string{"images", "logs"}, cfg.Run.PruneCategories)
		assert.True(t, cfg.Run.Wait)
		assert.Equal(t, "/opt/simulator", cfg.Build.BaseSource)
		assert.Equal(t, "simulator", cfg.Build.Target)
		assert.Equal(t, 4, cfg.Build.MakeJobs)
		assert.Equal(t, []string{"ADDON_PHYSIBOSS"}, cfg.Build.MacroFlags)
		assert.Equal(t, "compute", cfg.HPC.Partition)
		assert.Equal(t, "lab42", cfg.HPC.Account)
		assert.Equal(t, "4:00:00", cfg.HPC.TimeLimit)
		assert.Equal(t, "8G", cfg.HPC.Memory)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "stderr", cfg.Log.Destination)
		assert.Equal(t, 2, cfg.JobsNumber)
		assert.Equal(t, "/tmp/campaign", cfg.DataDir)
	})

	t.Run("rejects invalid values, keeps defaults", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptRunMode("cloud"),
			config.OptRunMarker("  "),
			config.OptBuildMakeJobs(0),
			config.OptLogLevel("chatty"),
			config.OptLogDestination("syslog"),
			config.OptJobsNumber(-1),
		})

		def := config.New()
		assert.Equal(t, def.Run.Mode, cfg.Run.Mode)
		assert.Equal(t, def.Run.Marker, cfg.Run.Marker)
		assert.Equal(t, def.Build.MakeJobs, cfg.Build.MakeJobs)
		assert.Equal(t, def.Log.Level, cfg.Log.Level)
		assert.Equal(t, def.Log.Destination, cfg.Log.Destination)
		assert.Equal(t, def.JobsNumber, cfg.JobsNumber)
	})
}

func TestToOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptRunMode("hpc"),
		config.OptRunWait(true),
		config.OptRunPruneCategories([]string{"snapshots"}),
		config.OptBuildBaseSource("/opt/simulator"),
		config.OptBuildMacroFlags([]string{"ADDON_ECM"}),
		config.OptHPCPartition("gpu"),
		config.OptJobsNumber(3),
		config.OptDataDir("/tmp/campaign"),
	})

	restored := config.New()
	restored.Update(cfg.ToOptions())

	t.Run("round trips persistent fields", func(t *testing.T) {
		assert.Equal(t, cfg.Run, restored.Run)
		assert.Equal(t, cfg.Build, restored.Build)
		assert.Equal(t, cfg.HPC, restored.HPC)
		assert.Equal(t, cfg.Log, restored.Log)
		assert.Equal(t, cfg.JobsNumber, restored.JobsNumber)
	})

	t.Run("excludes runtime-only fields", func(t *testing.T) {
		assert.Empty(t, restored.DataDir)
	})
}
