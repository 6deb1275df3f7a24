package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all fixed-table models for GORM AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Location{},
		&Simulation{},
		&Monad{},
		&MonadMember{},
		&Sampling{},
		&SamplingPoint{},
		&Trial{},
		&TrialSampling{},
		&Build{},
		&ColumnMigration{},
	}
}

// Migrate runs GORM AutoMigrate to create or update the fixed tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
