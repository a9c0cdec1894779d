package vaults

import (
	"fmt"
	"time"

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

func (s *GormStore) Vaults(o datastore.ListOptions) (vv []Vault, err error) {
	err = s.db.
		Order("created_at desc").
		Limit(o.Limit).
		Offset(o.Offset).
		Find(&vv).Error
	return
}

func (s *GormStore) Vault(owner string) (v Vault, err error) {
	err = s.db.First(&v, "owner = ?", owner).Error
	return
}

func (s *GormStore) EnsureVault(owner string) (v Vault, err error) {
	err = s.db.
		Where(Vault{Owner: owner}).
		Attrs(Vault{Status: StatusActive}).
		FirstOrCreate(&v).Error
	return
}

func (s *GormStore) UpsertSettlementAccount(owner, settlementAccount string) error {
	return datastore.Transaction(s.db, func(tx *gorm.DB) error {
		var v Vault
		if err := tx.
			Where(Vault{Owner: owner}).
			Attrs(Vault{Status: StatusActive}).
			FirstOrCreate(&v).Error; err != nil {
			return err
		}
		v.SettlementAccount = settlementAccount
		return tx.Save(&v).Error
	})
}

func (s *GormStore) UpdateSnapshot(owner string, totalBalance int64) error {
	return datastore.Transaction(s.db, func(tx *gorm.DB) error {
		var v Vault
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(Vault{Owner: owner}).
			Attrs(Vault{Status: StatusActive}).
			FirstOrCreate(&v).Error; err != nil {
			return err
		}
		v.TotalBalance = totalBalance
		if v.LockedBalance > v.TotalBalance {
			v.LockedBalance = v.TotalBalance
		}
		v.AvailableBalance = v.TotalBalance - v.LockedBalance
		return tx.Save(&v).Error
	})
}

func (s *GormStore) AdjustLocked(owner string, delta int64) (Vault, error) {
	var result Vault
	err := datastore.Transaction(s.db, func(tx *gorm.DB) error {
		var v Vault
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&v, "owner = ?", owner).Error; err != nil {
			return err
		}
		locked := v.LockedBalance + delta
		if locked < 0 {
			return fmt.Errorf("cannot unlock %d, only %d locked", -delta, v.LockedBalance)
		}
		if locked > v.TotalBalance {
			return fmt.Errorf("cannot lock %d, only %d available", delta, v.TotalBalance-v.LockedBalance)
		}
		v.LockedBalance = locked
		v.AvailableBalance = v.TotalBalance - v.LockedBalance
		if err := tx.Save(&v).Error; err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func (s *GormStore) IncrementDeposited(owner string, amount int64) error {
	return s.db.Model(&Vault{}).
		Where("owner = ?", owner).
		Update("total_deposited", gorm.Expr("total_deposited + ?", amount)).Error
}

func (s *GormStore) IncrementWithdrawn(owner string, amount int64) error {
	return s.db.Model(&Vault{}).
		Where("owner = ?", owner).
		Update("total_withdrawn", gorm.Expr("total_withdrawn + ?", amount)).Error
}

func (s *GormStore) VaultsWithSettlementAccount() (vv []Vault, err error) {
	err = s.db.
		Where("settlement_account <> ''").
		Where("status = ?", StatusActive).
		Find(&vv).Error
	return
}

func (s *GormStore) TVL() (int64, error) {
	var total int64
	err := s.db.Model(&Vault{}).
		Where("status = ?", StatusActive).
		Select("coalesce(sum(total_balance), 0)").
		Scan(&total).Error
	return total, err
}

func (s *GormStore) InsertTimelock(t *Timelock) error {
	return s.db.Create(t).Error
}

func (s *GormStore) DueTimelocks(window time.Duration) (tt []Timelock, err error) {
	err = s.db.
		Where("notified = ?", false).
		Where("release_at <= ?", time.Now().Add(window)).
		Order("release_at asc").
		Find(&tt).Error
	return
}

func (s *GormStore) MarkTimelockNotified(id uint) error {
	return s.db.Model(&Timelock{}).
		Where("id = ?", id).
		Update("notified", true).Error
}

func (s *GormStore) AuthorizedPrograms() (pp []AuthorizedProgram, err error) {
	err = s.db.Find(&pp).Error
	return
}

func (s *GormStore) IsAuthorizedProgram(programID string) (bool, error) {
	var count int64
	err := s.db.Model(&AuthorizedProgram{}).
		Where("program_id = ?", programID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) InsertAuthorizedProgram(p *AuthorizedProgram) error {
	return s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "program_id"}},
			DoNothing: true,
		}).
		Create(p).Error
}

func (s *GormStore) DeleteAuthorizedProgram(programID string) error {
	return s.db.Delete(&AuthorizedProgram{}, "program_id = ?", programID).Error
}
