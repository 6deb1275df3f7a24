// Package ioregistry implements the location registry: a stable mapping
// from named input folders to integer ids, one namespace per location
// kind. Registration validates the folder on disk before the database
// ever sees it.
package ioregistry

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

// requiredFiles lists the files a folder of each kind must contain to be
// accepted by the registry. Kinds with several entries require all of
// them.
var requiredFiles = map[param.LocationKind][]string{
	param.Config:             {"config.xml"},
	param.RulesetsCollection: {"rules.csv"},
	param.CustomCode:         {"main.cpp", "Makefile"},
	param.ICCell:             {"cells.csv"},
	param.ICSubstrate:        {"substrates.csv"},
	param.ICEcm:              {"ecm.csv"},
	param.ICDendritic:        {"dendritic.csv"},
	param.Intracellular:      {"intracellular.xml"},
}

type registry struct {
	operator db.Operator
	dataDir  string
}

// NewRegistry creates a Registry over the campaign database and the
// inputs directory rooted at dataDir.
func NewRegistry(op db.Operator, dataDir string) vtdb.Registry {
	return &registry{operator: op, dataDir: dataDir}
}

func (r *registry) Register(
	ctx context.Context,
	kind param.LocationKind,
	folderName string,
) (int64, error) {
	if !kind.Valid() {
		return 0, KindError(kind)
	}
	if err := r.validateFolder(kind, folderName); err != nil {
		return 0, err
	}

	pool := r.operator.DB()

	// Rows are never deleted from locations, so the fallback lookup
	// after a conflict cannot miss.
	q := `
INSERT INTO locations (kind, folder_name, created_at)
  VALUES (?, ?, CURRENT_TIMESTAMP)
  ON CONFLICT (kind, folder_name) DO NOTHING
  RETURNING id`
	var id int64
	err := pool.QueryRowContext(ctx, q, string(kind), folderName).Scan(&id)
	if err == nil {
		slog.Info("Registered location",
			"kind", kind, "folder", folderName, "id", id)
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, InsertError(kind, folderName, err)
	}

	return r.Lookup(ctx, kind, folderName)
}

func (r *registry) Lookup(
	ctx context.Context,
	kind param.LocationKind,
	folderName string,
) (int64, error) {
	pool := r.operator.DB()
	q := `SELECT id FROM locations WHERE kind = ? AND folder_name = ?`
	var id int64
	err := pool.QueryRowContext(ctx, q, string(kind), folderName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, NotRegisteredError(kind, folderName)
	}
	if err != nil {
		return 0, LookupError(kind, folderName, err)
	}
	return id, nil
}

func (r *registry) FolderName(
	ctx context.Context,
	kind param.LocationKind,
	id int64,
) (string, error) {
	pool := r.operator.DB()
	q := `SELECT folder_name FROM locations WHERE kind = ? AND id = ?`
	var folder string
	err := pool.QueryRowContext(ctx, q, string(kind), id).Scan(&folder)
	if errors.Is(err, sql.ErrNoRows) {
		return "", UnknownIDError(kind, id)
	}
	if err != nil {
		return "", LookupError(kind, "", err)
	}
	return folder, nil
}

// validateFolder checks that the folder exists under the kind's inputs
// directory and carries the kind's required files.
func (r *registry) validateFolder(
	kind param.LocationKind,
	folderName string,
) error {
	dir := config.LocationDir(r.dataDir, string(kind), folderName)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return FolderMissingError(kind, folderName, dir)
	}
	for _, f := range requiredFiles[kind] {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			return FolderInvalidError(kind, folderName, f)
		}
	}
	return nil
}
