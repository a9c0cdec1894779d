// Package transactions records every chain submission in the local ledger
// and owns the signing and sending of built transactions.
package transactions

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is a ledger row keyed by the chain signature. Rows are
// inserted as pending on submission and confirmed by the event indexer,
// regardless of which side observed the transaction first.
type Transaction struct {
	Signature  string         `json:"signature" gorm:"column:signature;primaryKey"`
	Owner      string         `json:"owner" gorm:"column:owner;index"`
	Amount     int64          `json:"amount" gorm:"column:amount"`
	Kind       Kind           `json:"kind" gorm:"column:kind"`
	Status     Status         `json:"status" gorm:"column:status"`
	RetryCount int            `json:"-" gorm:"column:retry_count;default:0"`
	// Raw holds the signed payload for queued sends until the indexer
	// confirms the transaction.
	Raw []byte `json:"-" gorm:"column:raw"`
	CreatedAt  time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt  time.Time      `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

func (Transaction) TableName() string {
	return "transactions"
}
