// Package multisig implements the threshold withdrawal workflow: a
// proposal accumulates approvals until the threshold is crossed, at which
// point a partially signed transaction is produced for out-of-band
// co-signing.
package multisig

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

type Proposal struct {
	ID        uuid.UUID      `json:"proposalId" gorm:"column:id;primaryKey;type:uuid"`
	Owner     string         `json:"owner" gorm:"column:owner;index"`
	Amount    int64          `json:"amount" gorm:"column:amount"`
	Threshold int            `json:"threshold" gorm:"column:threshold"`
	Signers   datatypes.JSON `json:"signers" gorm:"column:signers"`
	Status    Status         `json:"status" gorm:"column:status;default:pending"`
	CreatedAt time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

func (Proposal) TableName() string {
	return "ms_proposals"
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (p *Proposal) SignerList() ([]string, error) {
	var signers []string
	err := json.Unmarshal(p.Signers, &signers)
	return signers, err
}

type Approval struct {
	ID         uint           `json:"-" gorm:"column:id;primaryKey"`
	ProposalID uuid.UUID      `json:"proposalId" gorm:"column:proposal_id;type:uuid;uniqueIndex:idx_proposal_signer"`
	Signer     string         `json:"signer" gorm:"column:signer;uniqueIndex:idx_proposal_signer"`
	Signature  string         `json:"signature" gorm:"column:signature"`
	CreatedAt  time.Time      `json:"createdAt" gorm:"column:created_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"column:deleted_at"`
}

func (Approval) TableName() string {
	return "ms_approvals"
}
