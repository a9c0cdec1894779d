package m20250601

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//
// This is the first migration that initializes the whole DB. All types are
// snapshot here so that the structure and schema state for given point in time
// is preserved and can be rolled back to from later migrations, in case
// there's a need.
//

const ID = "20250601"

type Vault struct {
	Owner             string         `gorm:"column:owner;primaryKey"`
	SettlementAccount string         `gorm:"column:settlement_account;index"`
	TotalBalance      int64          `gorm:"column:total_balance;default:0"`
	LockedBalance     int64          `gorm:"column:locked_balance;default:0"`
	AvailableBalance  int64          `gorm:"column:available_balance;default:0"`
	TotalDeposited    int64          `gorm:"column:total_deposited;default:0"`
	TotalWithdrawn    int64          `gorm:"column:total_withdrawn;default:0"`
	Status            string         `gorm:"column:status;default:active"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Vault) TableName() string {
	return "vaults"
}

type Transaction struct {
	Signature  string         `gorm:"column:signature;primaryKey"`
	Owner      string         `gorm:"column:owner;index"`
	Amount     int64          `gorm:"column:amount"`
	Kind       string         `gorm:"column:kind"`
	Status     string         `gorm:"column:status"`
	RetryCount int            `gorm:"column:retry_count;default:0"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

type Proposal struct {
	ID        uuid.UUID      `gorm:"column:id;primaryKey;type:uuid"`
	Owner     string         `gorm:"column:owner;index"`
	Amount    int64          `gorm:"column:amount"`
	Threshold int            `gorm:"column:threshold"`
	Signers   datatypes.JSON `gorm:"column:signers"`
	Status    string         `gorm:"column:status;default:pending"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Proposal) TableName() string {
	return "ms_proposals"
}

type Approval struct {
	ID         uint           `gorm:"column:id;primaryKey"`
	ProposalID uuid.UUID      `gorm:"column:proposal_id;type:uuid;uniqueIndex:idx_proposal_signer"`
	Signer     string         `gorm:"column:signer;uniqueIndex:idx_proposal_signer"`
	Signature  string         `gorm:"column:signature"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (Approval) TableName() string {
	return "ms_approvals"
}

type ReconciliationLog struct {
	ID                uint      `gorm:"column:id;primaryKey"`
	VaultOwner        string    `gorm:"column:vault_owner;index"`
	SettlementAccount string    `gorm:"column:settlement_account"`
	DBBalance         int64     `gorm:"column:db_balance"`
	ChainBalance      int64     `gorm:"column:chain_balance"`
	Discrepancy       int64     `gorm:"column:discrepancy"`
	Threshold         int64     `gorm:"column:threshold"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (ReconciliationLog) TableName() string {
	return "reconciliation_logs"
}

type Nonce struct {
	Nonce     string    `gorm:"column:nonce;primaryKey"`
	Owner     string    `gorm:"column:owner;index"`
	Used      bool      `gorm:"column:used;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Nonce) TableName() string {
	return "nonces"
}

type Job struct {
	ID        uuid.UUID      `gorm:"column:id;primary_key;type:uuid;"`
	Type      string         `gorm:"column:type"`
	State     int            `gorm:"column:state;default:1"`
	Error     string         `gorm:"column:error"`
	Result    string         `gorm:"column:result"`
	ExecCount int            `gorm:"column:exec_count;default:0"`
	Signature string         `gorm:"column:signature"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Job) TableName() string {
	return "jobs"
}

type Settings struct {
	gorm.Model
	MaintenanceMode bool         `gorm:"column:maintenance_mode;default:false"`
	PausedSince     sql.NullTime `gorm:"column:paused_since"`
}

func (Settings) TableName() string {
	return "system_settings"
}

func Migrate(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&Vault{},
		&Transaction{},
		&Proposal{},
		&Approval{},
		&ReconciliationLog{},
		&Nonce{},
		&Job{},
		&Settings{},
	)
}

func Rollback(tx *gorm.DB) error {
	return tx.Migrator().DropTable(
		&Vault{},
		&Transaction{},
		&Proposal{},
		&Approval{},
		&ReconciliationLog{},
		&Nonce{},
		&Job{},
		&Settings{},
	)
}
