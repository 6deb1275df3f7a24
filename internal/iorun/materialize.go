package iorun

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gnames/gnfmt"
	"github.com/vtrials/vtdb/internal/ioxml"
	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

// xmlFiles names the XML document parameter paths of a kind resolve
// into. Variations of the remaining variable kinds are exported as a
// sidecar overrides file next to the copied folder.
var xmlFiles = map[param.LocationKind]string{
	param.Config:        "config.xml",
	param.Intracellular: "intracellular.xml",
}

// materialize stages every input folder of the task into the output
// directory and applies the task's parameter variations.
func (s *scheduler) materialize(
	ctx context.Context,
	task vtdb.Task,
	outDir string,
) error {
	for _, kind := range param.AllKinds() {
		locID, ok := task.Locations[kind]
		if !ok || kind == param.CustomCode {
			continue
		}

		folder, err := s.registry.FolderName(ctx, kind, locID)
		if err != nil {
			return err
		}
		src := config.LocationDir(s.cfg.DataDir, string(kind), folder)
		dst := filepath.Join(outDir, string(kind))
		if err = os.MkdirAll(dst, 0755); err != nil {
			return ConfigError(task.SimulationID, err)
		}
		if err = os.CopyFS(dst, os.DirFS(src)); err != nil {
			return ConfigError(task.SimulationID, err)
		}

		if err = s.applyVariation(ctx, task, kind, dst); err != nil {
			return err
		}
	}
	return nil
}

// applyVariation rewrites the staged copy of one kind with the values
// of the task's variation row. The base row 0 changes nothing.
func (s *scheduler) applyVariation(
	ctx context.Context,
	task vtdb.Task,
	kind param.LocationKind,
	dst string,
) error {
	if !kind.Variable() {
		return nil
	}
	variationID := task.Identity.ID(kind)
	if variationID == 0 {
		return nil
	}

	defs, err := s.defsFor(ctx, kind)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return nil
	}
	values, err := s.store.ValuesFor(ctx, kind, variationID, defs)
	if err != nil {
		return err
	}

	if file, ok := xmlFiles[kind]; ok {
		path := filepath.Join(dst, file)
		tree, err := ioxml.Load(path)
		if err != nil {
			return err
		}
		if err = tree.Apply(defs, values); err != nil {
			return err
		}
		return tree.Save(path)
	}

	// Non-XML kinds get their folder verbatim plus an overrides file
	// the simulator wrapper consumes.
	overrides := make(map[string]string, len(defs))
	for i, d := range defs {
		overrides[d.Path] = values[i].Text()
	}
	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(overrides)
	if err != nil {
		return ConfigError(task.SimulationID, err)
	}
	path := filepath.Join(dst, "overrides.json")
	if err = os.WriteFile(path, bs, 0644); err != nil {
		return ConfigError(task.SimulationID, err)
	}
	return nil
}

// defsFor rebuilds the parameter definitions of a kind from the column
// migration log, in column order.
func (s *scheduler) defsFor(
	ctx context.Context,
	kind param.LocationKind,
) ([]param.Def, error) {
	pool := s.operator.DB()
	q := `
SELECT path, value_type, base_value FROM column_migrations
  WHERE kind = ? AND drift = 0
  ORDER BY id`
	rows, err := pool.QueryContext(ctx, q, string(kind))
	if err != nil {
		return nil, ConfigError(0, err)
	}
	defer rows.Close()

	var defs []param.Def
	for rows.Next() {
		var path, vtype, base string
		if err = rows.Scan(&path, &vtype, &base); err != nil {
			return nil, ConfigError(0, err)
		}
		t := param.ValueType(vtype)
		baseVal, err := param.Parse(t, base)
		if err != nil {
			return nil, ConfigError(0, err)
		}
		defs = append(defs, param.Def{
			Kind: kind, Path: path, Type: t, Base: baseVal,
		})
	}
	return defs, rows.Err()
}
