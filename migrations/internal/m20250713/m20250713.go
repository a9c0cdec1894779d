package m20250713

import (
	"time"

	"gorm.io/gorm"
)

// Adds the timelock mirror and the caller program allowlist.

const ID = "20250713"

type Timelock struct {
	ID        uint           `gorm:"column:id;primaryKey"`
	Owner     string         `gorm:"column:owner;index"`
	Amount    int64          `gorm:"column:amount"`
	ReleaseAt time.Time      `gorm:"column:release_at;index"`
	Notified  bool           `gorm:"column:notified;default:false"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Timelock) TableName() string {
	return "timelocks"
}

type AuthorizedProgram struct {
	ProgramID string         `gorm:"column:program_id;primaryKey"`
	Label     string         `gorm:"column:label"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (AuthorizedProgram) TableName() string {
	return "authorized_programs"
}

func Migrate(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&Timelock{},
		&AuthorizedProgram{},
	)
}

func Rollback(tx *gorm.DB) error {
	return tx.Migrator().DropTable(
		&Timelock{},
		&AuthorizedProgram{},
	)
}
