package multisig

import (
	"github.com/google/uuid"

	"github.com/stablevault/solana-vault-api/datastore"
)

// Store manages data regarding withdrawal proposals and approvals.
type Store interface {
	Proposals(datastore.ListOptions) ([]Proposal, error)
	Proposal(id uuid.UUID) (Proposal, error)
	InsertProposal(*Proposal) error
	UpdateProposal(*Proposal) error
	// InsertApproval inserts unless (proposal, signer) already exists.
	// The returned flag reports whether a new row was created.
	InsertApproval(*Approval) (bool, error)
	ApprovalCount(proposalID uuid.UUID) (int, error)
	// Approvals returns approvals for a proposal ordered oldest first.
	Approvals(proposalID uuid.UUID) ([]Approval, error)
}
