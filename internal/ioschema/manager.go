// Package ioschema implements the SchemaManager interface for the
// campaign database. This is an impure I/O package that wraps GORM
// AutoMigrate for the fixed tables and seeds the dynamic variation
// tables with their base rows.
package ioschema

import (
	"context"

	"github.com/glebarez/sqlite"
	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/schema"
	"github.com/vtrials/vtdb/pkg/vtdb"
	"gorm.io/gorm"
)

// manager implements the vtdb.SchemaManager interface using GORM
// AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) vtdb.SchemaManager {
	return &manager{operator: op}
}

// Create creates the fixed tables using GORM AutoMigrate and seeds one
// empty variation table per variable location kind, each holding its
// reserved base row 0.
func (m *manager) Create(ctx context.Context) error {
	if err := m.autoMigrate(); err != nil {
		return err
	}
	return m.seedVariationTables(ctx)
}

// Migrate updates the fixed tables to the latest version and makes sure
// every variable kind has its variation table and base row; existing
// variation columns are data, not schema, and are left untouched.
func (m *manager) Migrate(ctx context.Context) error {
	if err := m.autoMigrate(); err != nil {
		return err
	}
	return m.seedVariationTables(ctx)
}

func (m *manager) autoMigrate() error {
	pool := m.operator.DB()
	if pool == nil {
		return NotConnectedError()
	}

	gormDB, err := gorm.Open(
		&sqlite.Dialector{Conn: pool},
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}
	return nil
}

// seedVariationTables creates the per-kind variation tables and their
// base rows. The base row must exist before any non-trivial variation is
// added; both statements are idempotent.
func (m *manager) seedVariationTables(ctx context.Context) error {
	pool := m.operator.DB()
	if pool == nil {
		return NotConnectedError()
	}

	for _, kind := range param.VariableKinds() {
		table := kind.VariationTable()
		q := `CREATE TABLE IF NOT EXISTS "` + table +
			`" (variation_id INTEGER PRIMARY KEY)`
		if _, err := pool.ExecContext(ctx, q); err != nil {
			return CreateSchemaError(err)
		}

		q = `INSERT OR IGNORE INTO "` + table + `" (variation_id) VALUES (0)`
		if _, err := pool.ExecContext(ctx, q); err != nil {
			return CreateSchemaError(err)
		}
	}
	return nil
}
