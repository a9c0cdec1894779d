package m20250830

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Adds the per-attempt error history column to jobs.

const ID = "20250830"

type Job struct {
	ID     uuid.UUID      `gorm:"primary_key;type:uuid;"`
	Errors pq.StringArray `gorm:"column:errors;type:text[]"`
}

func (Job) TableName() string {
	return "jobs"
}

func Migrate(tx *gorm.DB) error {
	return tx.Migrator().AddColumn(&Job{}, "Errors")
}

func Rollback(tx *gorm.DB) error {
	return tx.Migrator().DropColumn(&Job{}, "Errors")
}
