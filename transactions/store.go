package transactions

import (
	"github.com/stablevault/solana-vault-api/datastore"
)

// Store manages data regarding transactions.
type Store interface {
	Transactions(datastore.ListOptions) ([]Transaction, error)
	TransactionsForOwner(owner string, o datastore.ListOptions) ([]Transaction, error)
	Transaction(signature string) (Transaction, error)
	// InsertTransaction inserts a row unless the signature already exists.
	// The returned flag reports whether a new row was created.
	InsertTransaction(*Transaction) (bool, error)
	UpdateTransaction(*Transaction) error
	// ConfirmTransaction moves a pending row to confirmed. Status
	// transitions are monotonic so confirmed and failed rows are left
	// untouched.
	ConfirmTransaction(signature string) error
	MarkFailed(signature string) error
}
