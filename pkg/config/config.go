// Package config provides configuration management for vtdb.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml >
// defaults. The config file lives inside the campaign data directory, so
// every campaign carries its own settings next to its database.
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Run: mode, marker, executable, prune categories, wait
//   - Build: base_source, make_jobs, macro_flags, target
//   - HPC: partition, account, time_limit, memory
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - DataDir (set once at startup)
//
// # Environment Variables
//
// Use VTDB_ prefix with underscores for nesting:
//
//	VTDB_RUN_MODE=local
//	VTDB_BUILD_BASE_SOURCE=/opt/simulator
//	VTDB_LOG_LEVEL=info
//	VTDB_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete vtdb configuration.
type Config struct {
	// Run contains execution-scheduler settings.
	Run RunConfig `mapstructure:"run" yaml:"run"`

	// Build contains simulator-compilation settings.
	Build BuildConfig `mapstructure:"build" yaml:"build"`

	// HPC contains batch-queue submission settings.
	HPC HPCConfig `mapstructure:"hpc" yaml:"hpc"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent simulator subprocesses in
	// local dispatch mode. Defaults to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// DataDir is the campaign data directory holding the database, the
	// registered input folders and every simulation's output directory.
	// It is set by the CLI during init, there is no default value for it.
	DataDir string
}

// RunConfig contains execution-scheduler settings.
type RunConfig struct {
	// Mode selects the dispatcher: "local" or "hpc".
	Mode string `mapstructure:"mode" yaml:"mode"`

	// Marker is the file name, relative to a simulation's output
	// directory, whose presence proves the run completed. A simulation
	// whose marker exists on disk is never scheduled again.
	Marker string `mapstructure:"marker" yaml:"marker"`

	// PruneCategories lists heavy artifact categories removed right
	// after a simulation completes: "images", "snapshots", "logs".
	// Empty means no pruning.
	PruneCategories []string `mapstructure:"prune_categories" yaml:"prune_categories"`

	// Wait makes hpc dispatch block until submitted jobs finish.
	Wait bool `mapstructure:"wait" yaml:"wait"`
}

// BuildConfig contains simulator-compilation settings.
type BuildConfig struct {
	// BaseSource is the path to the base simulator source tree the
	// custom-code folder is staged on top of.
	BaseSource string `mapstructure:"base_source" yaml:"base_source"`

	// Target is the executable name produced by the build.
	Target string `mapstructure:"target" yaml:"target"`

	// MakeJobs is the -j value passed to make.
	MakeJobs int `mapstructure:"make_jobs" yaml:"make_jobs"`

	// MacroFlags is the current preprocessor macro set. A change in the
	// set makes every prior build of the same custom code stale.
	MacroFlags []string `mapstructure:"macro_flags" yaml:"macro_flags"`
}

// HPCConfig contains batch-queue submission settings.
type HPCConfig struct {
	// Partition is the queue partition jobs are submitted to.
	Partition string `mapstructure:"partition" yaml:"partition"`

	// Account is the accounting project, if the cluster requires one.
	Account string `mapstructure:"account" yaml:"account"`

	// TimeLimit is the per-job walltime, in sbatch syntax (e.g. "4:00:00").
	TimeLimit string `mapstructure:"time_limit" yaml:"time_limit"`

	// Memory is the per-job memory request (e.g. "4G").
	Memory string `mapstructure:"memory" yaml:"memory"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format" yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'.
	Level string `mapstructure:"level" yaml:"level"`
	// Destination can be a log file (in the data directory), STDERR
	// or STDOUT.
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Run: RunConfig{
			Mode:   "local",
			Marker: "final.xml",
		},
		Build: BuildConfig{
			Target:   "project",
			MakeJobs: runtime.NumCPU(),
		},
		HPC: HPCConfig{
			TimeLimit: "24:00:00",
			Memory:    "4G",
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
