package m20250815

import (
	"gorm.io/gorm"
)

// Adds the raw payload column used by queued transaction sends.

const ID = "20250815"

type Transaction struct {
	Signature string `gorm:"column:signature;primaryKey"`
	Raw       []byte `gorm:"column:raw"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func Migrate(tx *gorm.DB) error {
	return tx.Migrator().AddColumn(&Transaction{}, "Raw")
}

func Rollback(tx *gorm.DB) error {
	return tx.Migrator().DropColumn(&Transaction{}, "Raw")
}
