// Package vaults maintains the off-chain mirror of on-chain vault accounts
// and drives the application side lock, unlock and withdraw operations.
package vaults

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Vault mirrors one on-chain vault account per owner.
// AvailableBalance is derived from total and locked at every store write
// so reads never observe a diverged value.
type Vault struct {
	Owner             string         `json:"owner" gorm:"column:owner;primaryKey"`
	SettlementAccount string         `json:"settlementAccount,omitempty" gorm:"column:settlement_account;index"`
	TotalBalance      int64          `json:"totalBalance" gorm:"column:total_balance;default:0"`
	LockedBalance     int64          `json:"lockedBalance" gorm:"column:locked_balance;default:0"`
	AvailableBalance  int64          `json:"availableBalance" gorm:"column:available_balance;default:0"`
	TotalDeposited    int64          `json:"totalDeposited" gorm:"column:total_deposited;default:0"`
	TotalWithdrawn    int64          `json:"totalWithdrawn" gorm:"column:total_withdrawn;default:0"`
	Status            Status         `json:"status" gorm:"column:status;default:active"`
	CreatedAt         time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt         time.Time      `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

func (Vault) TableName() string {
	return "vaults"
}

// Timelock is a scheduled release of locked funds. The sweep loop flags
// rows whose release time falls inside the due-soon window.
type Timelock struct {
	ID        uint           `json:"id" gorm:"column:id;primaryKey"`
	Owner     string         `json:"owner" gorm:"column:owner;index"`
	Amount    int64          `json:"amount" gorm:"column:amount"`
	ReleaseAt time.Time      `json:"releaseAt" gorm:"column:release_at;index"`
	Notified  bool           `json:"-" gorm:"column:notified;default:false"`
	CreatedAt time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

func (Timelock) TableName() string {
	return "timelocks"
}

// AuthorizedProgram is an allowlisted caller program for collateral
// transfers between vaults.
type AuthorizedProgram struct {
	ProgramID string         `json:"programId" gorm:"column:program_id;primaryKey"`
	Label     string         `json:"label" gorm:"column:label"`
	CreatedAt time.Time      `json:"createdAt" gorm:"column:created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

func (AuthorizedProgram) TableName() string {
	return "authorized_programs"
}
