// Package iotesting provides shared test utilities for integration
// tests. This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vtrials/vtdb/internal/iodb"
	"github.com/vtrials/vtdb/internal/ioschema"
	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/param"
)

// SetupDataDir creates a temporary campaign data directory with the
// standard subdirectory layout. Cleanup is registered with the test.
func SetupDataDir(t *testing.T) string {
	t.Helper()

	dataDir := t.TempDir()
	dirs := []string{
		config.InputsDir(dataDir),
		config.OutputsDir(dataDir),
		config.BuildsDir(dataDir),
		config.LedgersDir(dataDir),
		config.LogDir(dataDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	return dataDir
}

// SetupDB connects an operator to a fresh campaign database inside
// dataDir and creates the full schema, base rows included.
func SetupDB(t *testing.T, dataDir string) db.Operator {
	t.Helper()

	ctx := context.Background()
	op := iodb.NewOperator()
	if err := op.Connect(ctx, dataDir); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { op.Close() })

	mgr := ioschema.NewManager(op)
	if err := mgr.Create(ctx); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}
	return op
}

// WriteInputFolder creates one registered-input candidate folder of the
// given kind, holding the named files with trivial content. It returns
// the folder path.
func WriteInputFolder(
	t *testing.T,
	dataDir string,
	kind param.LocationKind,
	folder string,
	files map[string]string,
) string {
	t.Helper()

	dir := config.LocationDir(dataDir, string(kind), folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create input folder %s: %v", dir, err)
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	return dir
}
