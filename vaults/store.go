package vaults

import (
	"time"

	"github.com/stablevault/solana-vault-api/datastore"
)

// Store manages data regarding vaults.
type Store interface {
	Vaults(datastore.ListOptions) ([]Vault, error)
	Vault(owner string) (Vault, error)
	// EnsureVault creates the row on first contact with an owner.
	EnsureVault(owner string) (Vault, error)
	UpsertSettlementAccount(owner, settlementAccount string) error
	// UpdateSnapshot replaces the total balance with a chain-observed value
	// and recomputes the available balance.
	UpdateSnapshot(owner string, totalBalance int64) error
	// AdjustLocked moves the locked balance by delta while holding
	// 0 <= locked <= total.
	AdjustLocked(owner string, delta int64) (Vault, error)
	IncrementDeposited(owner string, amount int64) error
	IncrementWithdrawn(owner string, amount int64) error
	VaultsWithSettlementAccount() ([]Vault, error)
	TVL() (int64, error)

	InsertTimelock(*Timelock) error
	DueTimelocks(window time.Duration) ([]Timelock, error)
	MarkTimelockNotified(id uint) error

	AuthorizedPrograms() ([]AuthorizedProgram, error)
	IsAuthorizedProgram(programID string) (bool, error)
	InsertAuthorizedProgram(*AuthorizedProgram) error
	DeleteAuthorizedProgram(programID string) error
}
