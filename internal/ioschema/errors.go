package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vtrials/vtdb/pkg/errcode"
)

// NotConnectedError happens when schema operations run before the
// database operator has connected.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database is not connected",
		Err:  fmt.Errorf("ioschema: operator not connected"),
	}
}

// GORMConnectionError happens when GORM cannot attach to the shared
// database pool.
func GORMConnectionError(err error) error {
	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  "Cannot initialize ORM over the database connection",
		Err:  fmt.Errorf("ioschema: gorm open: %w", err),
	}
}

// CreateSchemaError happens when tables cannot be created or updated.
func CreateSchemaError(err error) error {
	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  "Cannot create database schema",
		Err:  fmt.Errorf("ioschema: migrate: %w", err),
	}
}
