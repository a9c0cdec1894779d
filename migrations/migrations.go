package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/stablevault/solana-vault-api/migrations/internal/m20250601"
	"github.com/stablevault/solana-vault-api/migrations/internal/m20250713"
	"github.com/stablevault/solana-vault-api/migrations/internal/m20250815"
	"github.com/stablevault/solana-vault-api/migrations/internal/m20250830"
)

func List() []*gormigrate.Migration {
	ms := []*gormigrate.Migration{
		{
			ID:       m20250601.ID,
			Migrate:  m20250601.Migrate,
			Rollback: m20250601.Rollback,
		},
		{
			ID:       m20250713.ID,
			Migrate:  m20250713.Migrate,
			Rollback: m20250713.Rollback,
		},
		{
			ID:       m20250815.ID,
			Migrate:  m20250815.Migrate,
			Rollback: m20250815.Rollback,
		},
		{
			ID:       m20250830.ID,
			Migrate:  m20250830.Migrate,
			Rollback: m20250830.Rollback,
		},
	}
	return ms
}

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, List())
	return m.Migrate()
}
