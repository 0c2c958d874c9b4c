package wallet

import (
	"errors"
	"time"

	"tonk-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockedWallet is one wallet row held FOR UPDATE inside a transaction.
// Users without a row get a zero wallet that is inserted on save.
type lockedWallet struct {
	*model.Wallet
	stored bool
}

func lockWallet(tx *gorm.DB, userID int64) (lockedWallet, error) {
	var w model.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Take(&w).Error
	switch {
	case err == nil:
		return lockedWallet{Wallet: &w, stored: true}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return lockedWallet{Wallet: &model.Wallet{UserID: userID}}, nil
	default:
		return lockedWallet{}, err
	}
}

func (lw lockedWallet) save(tx *gorm.DB, now time.Time) error {
	lw.UpdatedAt = now
	if lw.stored {
		return tx.Save(lw.Wallet).Error
	}
	return tx.Create(lw.Wallet).Error
}
