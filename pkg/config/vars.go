package config

import (
	"path/filepath"
	"strconv"
)

var (
	// AppName is used in generating file system paths.
	AppName = "vtdb"

	// DBFileName is the name of the embedded campaign database.
	DBFileName = "vtdb.db"
)

// DBFilePath returns the path of the campaign database file.
func DBFilePath(dataDir string) string {
	return filepath.Join(dataDir, DBFileName)
}

// ConfigFilePath returns the full path to the campaign's config.yaml.
func ConfigFilePath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// InputsDir returns the directory holding registered input folders,
// one subdirectory per location kind.
func InputsDir(dataDir string) string {
	return filepath.Join(dataDir, "inputs")
}

// LocationDir returns the folder of one registered location.
func LocationDir(dataDir, kind, folder string) string {
	return filepath.Join(InputsDir(dataDir), kind, folder)
}

// OutputsDir returns the directory holding simulation output directories.
func OutputsDir(dataDir string) string {
	return filepath.Join(dataDir, "outputs")
}

// SimulationDir returns the output directory of one simulation.
// A simulation is 1:1 with exactly this directory.
func SimulationDir(dataDir string, simulationID int64) string {
	return filepath.Join(OutputsDir(dataDir), strconv.FormatInt(simulationID, 10))
}

// BuildsDir returns the directory holding compiled simulator executables,
// one subdirectory per build key.
func BuildsDir(dataDir string) string {
	return filepath.Join(dataDir, "builds")
}

// LedgersDir returns the directory for exported replicate-group ledgers.
func LedgersDir(dataDir string) string {
	return filepath.Join(dataDir, "ledgers")
}

// LogDir returns the directory for log files.
func LogDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}
