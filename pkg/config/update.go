package config

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (DataDir).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option

	if s := c.Run.Mode; s != "" {
		res = append(res, OptRunMode(s))
	}
	if s := c.Run.Marker; s != "" {
		res = append(res, OptRunMarker(s))
	}
	if ss := c.Run.PruneCategories; len(ss) > 0 {
		res = append(res, OptRunPruneCategories(ss))
	}
	if c.Run.Wait {
		res = append(res, OptRunWait(true))
	}

	if s := c.Build.BaseSource; s != "" {
		res = append(res, OptBuildBaseSource(s))
	}
	if s := c.Build.Target; s != "" {
		res = append(res, OptBuildTarget(s))
	}
	if i := c.Build.MakeJobs; i > 0 {
		res = append(res, OptBuildMakeJobs(i))
	}
	if ss := c.Build.MacroFlags; len(ss) > 0 {
		res = append(res, OptBuildMacroFlags(ss))
	}

	if s := c.HPC.Partition; s != "" {
		res = append(res, OptHPCPartition(s))
	}
	if s := c.HPC.Account; s != "" {
		res = append(res, OptHPCAccount(s))
	}
	if s := c.HPC.TimeLimit; s != "" {
		res = append(res, OptHPCTimeLimit(s))
	}
	if s := c.HPC.Memory; s != "" {
		res = append(res, OptHPCMemory(s))
	}

	if s := c.Log.Format; s != "" {
		res = append(res, OptLogFormat(s))
	}
	if s := c.Log.Level; s != "" {
		res = append(res, OptLogLevel(s))
	}
	if s := c.Log.Destination; s != "" {
		res = append(res, OptLogDestination(s))
	}

	if i := c.JobsNumber; i > 0 {
		res = append(res, OptJobsNumber(i))
	}

	return res
}
