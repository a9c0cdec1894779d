package transactions

import (
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

func (s *GormStore) Transactions(o datastore.ListOptions) (tt []Transaction, err error) {
	err = s.db.
		Order("created_at desc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&tt).Error
	return
}

func (s *GormStore) TransactionsForOwner(owner string, o datastore.ListOptions) (tt []Transaction, err error) {
	err = s.db.
		Where("owner = ?", owner).
		Order("created_at desc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&tt).Error
	return
}

func (s *GormStore) Transaction(signature string) (t Transaction, err error) {
	err = s.db.First(&t, "signature = ?", signature).Error
	return
}

func (s *GormStore) InsertTransaction(t *Transaction) (bool, error) {
	res := s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "signature"}},
			DoNothing: true,
		}).
		Create(t)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) UpdateTransaction(t *Transaction) error {
	return s.db.Save(t).Error
}

func (s *GormStore) ConfirmTransaction(signature string) error {
	return s.db.Model(&Transaction{}).
		Where("signature = ?", signature).
		Where("status = ?", StatusPending).
		Update("status", StatusConfirmed).Error
}

func (s *GormStore) MarkFailed(signature string) error {
	return s.db.Model(&Transaction{}).
		Where("signature = ?", signature).
		Where("status = ?", StatusPending).
		Updates(map[string]interface{}{
			"status":      StatusFailed,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
}
