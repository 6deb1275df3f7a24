package db

import (
	"context"
	"database/sql"
)

// Operator defines the interface for basic campaign-database management.
// It provides connection lifecycle management and exposes the *sql.DB for
// high-level components (SchemaManager, Registry, VariationStore,
// Hierarchy, Scheduler) to execute their specialized SQL internally.
//
// Design rationale:
// - Keeps the interface minimal to avoid bloat with mixed semantics
// - DB() enables components to use native SQLite operations (upserts with
//   RETURNING, IMMEDIATE transactions) that the dedup and claim guarantees
//   depend on
// - Fixed-schema creation and migration are handled by GORM AutoMigrate
//   via SchemaManager
type Operator interface {
	// Connect opens the embedded database inside the campaign data
	// directory, creating the file if needed, and applies the pragmas
	// (WAL, foreign keys, busy timeout) every component relies on.
	Connect(ctx context.Context, dataDir string) error

	// Close closes the database.
	Close() error

	// DB returns the underlying handle for components to execute
	// specialized SQL. Returns nil before Connect.
	DB() *sql.DB

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the database has any user tables.
	// Used to determine if schema creation should prompt for confirmation.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all user tables.
	// Used during schema initialization when overwriting existing data.
	DropAllTables(ctx context.Context) error
}
