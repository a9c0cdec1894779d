package gorm

import (
	"gorm.io/gorm"

	"github.com/stablevault/solana-vault-api/migrations"
)

// New opens the configured database and brings the schema up to date.
func New() (*gorm.DB, error) {
	cfg := ParseConfig()

	db, err := gorm.Open(cfg.Dialector, cfg.Options)
	if err != nil {
		return nil, err
	}

	if err := migrations.Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
