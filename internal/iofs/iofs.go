// Package iofs prepares the campaign data directory: the standard
// subdirectory layout, the per-kind inputs tree, and the default
// config.yaml.
package iofs

import (
	_ "embed"
	"os"

	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/param"
)

//go:embed config.yaml
var ConfigYAML string

// EnsureDirs creates the campaign directory layout: inputs (one
// subdirectory per location kind), outputs, builds, ledgers and logs.
func EnsureDirs(dataDir string) error {
	dirs := []string{
		dataDir,
		config.InputsDir(dataDir),
		config.OutputsDir(dataDir),
		config.BuildsDir(dataDir),
		config.LedgersDir(dataDir),
		config.LogDir(dataDir),
	}
	for _, kind := range param.AllKinds() {
		dirs = append(dirs,
			config.LocationDir(dataDir, string(kind), ""))
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes the default config.yaml into the data
// directory unless one already exists.
func EnsureConfigFile(dataDir string) error {
	configPath := config.ConfigFilePath(dataDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.WriteFile(configPath, []byte(ConfigYAML), 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}
