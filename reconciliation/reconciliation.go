// Package reconciliation periodically cross-checks the ledger mirror
// against live chain balances and records any drift beyond the threshold.
package reconciliation

import (
	"time"

	"gorm.io/gorm"
)

// Log is an append-only drift fact. Discrepancy is signed:
// chain balance minus ledger balance.
type Log struct {
	ID                uint      `json:"id" gorm:"column:id;primaryKey"`
	VaultOwner        string    `json:"vaultOwner" gorm:"column:vault_owner;index"`
	SettlementAccount string    `json:"settlementAccount" gorm:"column:settlement_account"`
	DBBalance         int64     `json:"dbBalance" gorm:"column:db_balance"`
	ChainBalance      int64     `json:"chainBalance" gorm:"column:chain_balance"`
	Discrepancy       int64     `json:"discrepancy" gorm:"column:discrepancy"`
	Threshold         int64     `json:"threshold" gorm:"column:threshold"`
	CreatedAt         time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Log) TableName() string {
	return "reconciliation_logs"
}

// Store manages data regarding reconciliation logs.
type Store interface {
	InsertLog(*Log) error
	Logs(limit int) ([]Log, error)
	LogsForOwner(owner string, limit int) ([]Log, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &GormStore{db}
}

func (s *GormStore) InsertLog(l *Log) error {
	return s.db.Create(l).Error
}

func (s *GormStore) Logs(limit int) (ll []Log, err error) {
	if limit <= 0 {
		limit = 100
	}
	err = s.db.Order("created_at desc").Limit(limit).Find(&ll).Error
	return
}

func (s *GormStore) LogsForOwner(owner string, limit int) (ll []Log, err error) {
	if limit <= 0 {
		limit = 100
	}
	err = s.db.
		Where("vault_owner = ?", owner).
		Order("created_at desc").
		Limit(limit).
		Find(&ll).Error
	return
}
