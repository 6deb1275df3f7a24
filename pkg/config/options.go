package config

import (
	"strings"

	"github.com/gnames/gn"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptRunMode sets the dispatcher mode. Valid values: "local", "hpc".
func OptRunMode(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if s != "local" && s != "hpc" {
			gn.Warn("Ignoring invalid Run Mode '%s'", s)
			return
		}
		c.Run.Mode = s
	}
}

// OptRunMarker sets the completion-marker file name.
func OptRunMarker(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Run Marker", s) {
			c.Run.Marker = s
		}
	}
}

// OptRunPruneCategories sets the artifact categories removed after a
// simulation completes.
func OptRunPruneCategories(ss []string) Option {
	return func(c *Config) {
		if len(ss) > 0 {
			c.Run.PruneCategories = ss
		}
	}
}

// OptRunWait makes hpc dispatch block until submitted jobs finish.
func OptRunWait(b bool) Option {
	return func(c *Config) {
		c.Run.Wait = b
	}
}

// OptBuildBaseSource sets the base simulator source tree path.
func OptBuildBaseSource(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Build BaseSource", s) {
			c.Build.BaseSource = s
		}
	}
}

// OptBuildTarget sets the executable name produced by the build.
func OptBuildTarget(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Build Target", s) {
			c.Build.Target = s
		}
	}
}

// OptBuildMakeJobs sets the -j value passed to make.
func OptBuildMakeJobs(i int) Option {
	return func(c *Config) {
		if isValidInt("Build MakeJobs", i) {
			c.Build.MakeJobs = i
		}
	}
}

// OptBuildMacroFlags sets the current preprocessor macro set.
func OptBuildMacroFlags(ss []string) Option {
	return func(c *Config) {
		if len(ss) > 0 {
			c.Build.MacroFlags = ss
		}
	}
}

// OptHPCPartition sets the batch-queue partition.
func OptHPCPartition(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("HPC Partition", s) {
			c.HPC.Partition = s
		}
	}
}

// OptHPCAccount sets the batch-queue accounting project.
func OptHPCAccount(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("HPC Account", s) {
			c.HPC.Account = s
		}
	}
}

// OptHPCTimeLimit sets the per-job walltime.
func OptHPCTimeLimit(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("HPC TimeLimit", s) {
			c.HPC.TimeLimit = s
		}
	}
}

// OptHPCMemory sets the per-job memory request.
func OptHPCMemory(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("HPC Memory", s) {
			c.HPC.Memory = s
		}
	}
}

// OptLogFormat sets the log output format. Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if s != "json" && s != "text" {
			gn.Warn("Ignoring invalid Log Format '%s'", s)
			return
		}
		c.Log.Format = s
	}
}

// OptLogLevel sets the logging level.
func OptLogLevel(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		switch s {
		case "debug", "info", "warn", "error":
			c.Log.Level = s
		default:
			gn.Warn("Ignoring invalid Log Level '%s'", s)
		}
	}
}

// OptLogDestination sets where logs go: "file", "stdout" or "stderr".
func OptLogDestination(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		switch s {
		case "file", "stdout", "stderr":
			c.Log.Destination = s
		default:
			gn.Warn("Ignoring invalid Log Destination '%s'", s)
		}
	}
}

// OptJobsNumber sets the local dispatch concurrency limit.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptDataDir sets the campaign data directory.
// Runtime-only field - not in ToOptions().
func OptDataDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Data Dir", s) {
			c.DataDir = s
		}
	}
}

func isValidString(field, s string) bool {
	if s == "" {
		gn.Warn("Ignoring empty %s", field)
		return false
	}
	return true
}

func isValidInt(field string, i int) bool {
	if i <= 0 {
		gn.Warn("Ignoring non-positive %s '%d'", field, i)
		return false
	}
	return true
}
