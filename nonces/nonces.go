// Package nonces issues single-use anti-replay tokens bound to an owner.
package nonces

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stablevault/solana-vault-api/errors"
)

type Nonce struct {
	Nonce     string    `json:"nonce" gorm:"column:nonce;primaryKey"`
	Owner     string    `json:"owner" gorm:"column:owner;index"`
	Used      bool      `json:"used" gorm:"column:used;default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"-" gorm:"column:updated_at"`
}

func (Nonce) TableName() string {
	return "nonces"
}

type Store interface {
	InsertNonce(*Nonce) error
	// ConsumeNonce marks a nonce used with compare-and-set semantics:
	// exactly one caller succeeds, every other consumption fails.
	ConsumeNonce(nonce, owner string) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &GormStore{db}
}

func (s *GormStore) InsertNonce(n *Nonce) error {
	return s.db.Create(n).Error
}

func (s *GormStore) ConsumeNonce(nonce, owner string) error {
	res := s.db.Model(&Nonce{}).
		Where("nonce = ?", nonce).
		Where("owner = ?", owner).
		Where("used = ?", false).
		Update("used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return errors.Conflict("nonce already used or unknown")
	}
	return nil
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store}
}

func (s *Service) Issue(owner string) (Nonce, error) {
	n := Nonce{
		Nonce: uuid.NewString(),
		Owner: owner,
	}
	if err := s.store.InsertNonce(&n); err != nil {
		return Nonce{}, err
	}
	return n, nil
}

func (s *Service) Consume(nonce, owner string) error {
	return s.store.ConsumeNonce(nonce, owner)
}
