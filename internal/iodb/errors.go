package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
)

// OpenError is returned when the campaign database cannot be opened.
func OpenError(path string, err error) error {
	msg := `Cannot open campaign database <em>%s</em>

<em>Possible causes:</em>
  - the data directory does not exist (run <em>vtdb init</em> first)
  - another process holds an incompatible lock
  - the file is not a SQLite database`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.DBOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot open database %s: %w", path, err),
	}
}

// NotConnectedError is returned when an operation is attempted before
// Connect.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Operation attempted without database connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableCheckError is returned when checking for tables fails.
func TableCheckError(err error) error {
	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  "Could not verify database state",
		Err:  fmt.Errorf("cannot check database tables: %w", err),
	}
}

// QueryTablesError is returned when listing tables fails.
func QueryTablesError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  "Could not list database tables",
		Err:  fmt.Errorf("cannot query tables: %w", err),
	}
}

// DropTableError is returned when dropping a table fails.
func DropTableError(table string, err error) error {
	msg := "Could not drop table <em>%s</em>"
	vars := []any{table}
	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot drop table %s: %w", table, err),
	}
}
