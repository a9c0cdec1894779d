package multisig

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stablevault/solana-vault-api/datastore"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &GormStore{db}
}

func (s *GormStore) Proposals(o datastore.ListOptions) (pp []Proposal, err error) {
	err = s.db.
		Order("created_at desc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&pp).Error
	return
}

func (s *GormStore) Proposal(id uuid.UUID) (p Proposal, err error) {
	err = s.db.First(&p, "id = ?", id).Error
	return
}

func (s *GormStore) InsertProposal(p *Proposal) error {
	return s.db.Create(p).Error
}

func (s *GormStore) UpdateProposal(p *Proposal) error {
	return s.db.Save(p).Error
}

func (s *GormStore) InsertApproval(a *Approval) (bool, error) {
	res := s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "signer"}},
			DoNothing: true,
		}).
		Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) ApprovalCount(proposalID uuid.UUID) (int, error) {
	var count int64
	err := s.db.Model(&Approval{}).
		Where("proposal_id = ?", proposalID).
		Count(&count).Error
	return int(count), err
}

func (s *GormStore) Approvals(proposalID uuid.UUID) (aa []Approval, err error) {
	err = s.db.
		Where("proposal_id = ?", proposalID).
		Order("created_at asc, id asc").
		Find(&aa).Error
	return
}
