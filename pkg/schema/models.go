// Package schema provides the fixed-table models of the campaign database.
// The dynamic variation tables (one per variable location kind, growing a
// column per varied parameter) are owned by the variation store and are
// deliberately not modeled here: their shape is data, not schema.
package schema

import (
	"time"
)

// Location is a named, registered input folder of one fixed kind.
// The registry is append-only; ids are immutable once assigned.
type Location struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Kind       string `gorm:"index:ux_location,unique;size:32;not null"`
	FolderName string `gorm:"index:ux_location,unique;size:255;not null"`
	CreatedAt  time.Time
}

// Simulation is one run of the simulator: one row, one output directory.
// Location ids are -1 for kinds the run does not use; variation ids
// default to 0, the base row of each kind's variation table.
type Simulation struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	ConfigLocationID        int64 `gorm:"not null;default:-1;index:ix_sim_identity"`
	RulesetsLocationID      int64 `gorm:"not null;default:-1;index:ix_sim_identity"`
	CustomCodeLocationID    int64 `gorm:"not null;default:-1;index:ix_sim_identity"`
	ICCellLocationID        int64 `gorm:"not null;default:-1;index:ix_sim_identity"`
	ICSubstrateLocationID   int64 `gorm:"not null;default:-1"`
	ICEcmLocationID         int64 `gorm:"not null;default:-1"`
	ICDendriticLocationID   int64 `gorm:"not null;default:-1"`
	IntracellularLocationID int64 `gorm:"not null;default:-1"`

	ConfigVariationID        int64 `gorm:"not null;default:0;index:ix_sim_identity"`
	RulesetsVariationID      int64 `gorm:"not null;default:0;index:ix_sim_identity"`
	ICCellVariationID        int64 `gorm:"not null;default:0"`
	ICEcmVariationID         int64 `gorm:"not null;default:0"`
	IntracellularVariationID int64 `gorm:"not null;default:0"`

	// Status is one of not_started, queued, running, completed, failed.
	Status string `gorm:"size:16;not null;default:not_started;index"`

	// ClaimToken identifies the worker that owns the queued/running
	// transition; empty when unclaimed.
	ClaimToken string `gorm:"size:36;not null;default:''"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Monad is a replicate group: N statistically identical simulations
// sharing one location set and one variation identity.
type Monad struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	ConfigLocationID        int64 `gorm:"not null;default:-1;index:ix_monad_identity"`
	RulesetsLocationID      int64 `gorm:"not null;default:-1;index:ix_monad_identity"`
	CustomCodeLocationID    int64 `gorm:"not null;default:-1;index:ix_monad_identity"`
	ICCellLocationID        int64 `gorm:"not null;default:-1;index:ix_monad_identity"`
	ICSubstrateLocationID   int64 `gorm:"not null;default:-1"`
	ICEcmLocationID         int64 `gorm:"not null;default:-1"`
	ICDendriticLocationID   int64 `gorm:"not null;default:-1"`
	IntracellularLocationID int64 `gorm:"not null;default:-1"`

	ConfigVariationID        int64 `gorm:"not null;default:0;index:ix_monad_identity"`
	RulesetsVariationID      int64 `gorm:"not null;default:0;index:ix_monad_identity"`
	ICCellVariationID        int64 `gorm:"not null;default:0"`
	ICEcmVariationID         int64 `gorm:"not null;default:0"`
	IntracellularVariationID int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
}

// MonadMember is the append-only membership ledger of a replicate group.
// Rows are only ever added; a group can grow past what any single request
// asked for.
type MonadMember struct {
	MonadID      int64 `gorm:"primaryKey;autoIncrement:false"`
	SimulationID int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt    time.Time
}

// Sampling is a parameter-grid: one monad per point of a design matrix,
// in design order.
type Sampling struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	// Method is the design generator that produced the points:
	// grid, lhs, sobol, rbd, moat, sobol_sample.
	Method string `gorm:"size:16;not null"`

	// DesignMeta is the JSON-encoded design scheme (permutations,
	// trajectory layout, matrix layout) consumed by the sensitivity
	// post-processor.
	DesignMeta string `gorm:"type:text;not null;default:''"`

	CreatedAt time.Time
}

// SamplingPoint ties a sampling to its monads, preserving design order.
type SamplingPoint struct {
	SamplingID int64 `gorm:"primaryKey;autoIncrement:false"`
	Position   int   `gorm:"primaryKey;autoIncrement:false"`
	MonadID    int64 `gorm:"not null;index"`
}

// Trial is a campaign: an ordered collection of samplings.
type Trial struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
}

// TrialSampling ties a trial to its samplings.
type TrialSampling struct {
	TrialID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Position   int   `gorm:"primaryKey;autoIncrement:false"`
	SamplingID int64 `gorm:"not null;index"`
}

// Build memoizes one compilation of the simulator per
// (custom-code location, macro-flag set) combination.
type Build struct {
	// Key is the deterministic UUID of the combination.
	Key string `gorm:"primaryKey;size:36"`

	CustomCodeLocationID int64  `gorm:"not null;index"`
	MacroFlags           string `gorm:"type:text;not null;default:''"`
	ExecutablePath       string `gorm:"size:512;not null"`
	LogPath              string `gorm:"size:512;not null;default:''"`
	BuiltAt              time.Time
}

// ColumnMigration is the explicit schema-evolution log of the variation
// tables: one row per parameter column ever added, with the base value it
// was backfilled with. Drift rows record a later base-value change that
// was detected but not applied to history.
type ColumnMigration struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Kind      string `gorm:"size:32;not null;index"`
	Path      string `gorm:"size:512;not null"`
	ValueType string `gorm:"size:16;not null"`
	BaseValue string `gorm:"type:text;not null"`
	Drift     bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
