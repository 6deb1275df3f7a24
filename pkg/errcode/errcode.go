package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBOpenError
	DBNotConnectedError
	DBTableCheckError
	DBQueryTablesError
	DBDropTableError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError

	// Registry errors
	RegistryFolderMissingError
	RegistryFolderInvalidError
	RegistryKindError
	RegistryInsertError
	RegistryLookupError

	// Variation store errors
	StoreKindNotVariableError
	StoreColumnAddError
	StoreBackfillError
	StoreIndexRebuildError
	StoreInsertError
	StoreLookupError

	// Design errors
	DesignEmptyError
	DesignDiscreteOnlyError
	DesignLengthMismatchError
	DesignSizeError

	// Hierarchy errors
	HierarchyInsertError
	HierarchyLookupError
	HierarchyLedgerError
	HierarchyDeleteError

	// Scheduler errors
	RunClaimError
	RunTransitionError
	RunConfigError
	RunMarkerError
	RunPruneError
	RunReconcileError

	// Compile errors
	CompileStaleCheckError
	CompileBuildError

	// Batch queue errors
	HPCSubmitError
	HPCWaitError

	// Config tree errors
	XMLPathError
	XMLReadError
	XMLWriteError

	// Sweep request errors
	RequestParseError
	RequestValidationError

	// Sensitivity errors
	SensitivitySchemeError
	SensitivityResponseError
)
