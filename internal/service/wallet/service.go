package wallet

import (
	"context"
	"fmt"
	"time"

	"tonk-service/internal/model"
	appErr "tonk-service/pkg/errors"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

type AdminSetWalletRequest struct {
	BalanceAvailable *int64
	BalanceFrozen    *int64
}

// Entry describes one balance movement.
type Entry struct {
	UserID int64
	Amount int64
	Type   string
	GameID string
	Meta   map[string]interface{}
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithTx returns a Service bound to an open transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx}
}

func (s *Service) GetWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	var wallet model.Wallet
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &model.Wallet{UserID: userID}, nil
		}
		return nil, err
	}
	return &wallet, nil
}

// Debit takes e.Amount from the available balance, failing with
// ErrInsufficientBalance when the wallet cannot cover it.
func (s *Service) Debit(ctx context.Context, e Entry) (*model.Wallet, error) {
	return s.move(ctx, e, -e.Amount)
}

func (s *Service) Credit(ctx context.Context, e Entry) (*model.Wallet, error) {
	return s.move(ctx, e, e.Amount)
}

func (s *Service) move(ctx context.Context, e Entry, delta int64) (*model.Wallet, error) {
	if e.Amount <= 0 {
		return nil, appErr.ErrInvalidAmount
	}
	if e.UserID <= 0 {
		return nil, appErr.ErrUserNotFound
	}

	now := time.Now()
	var result model.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, e.UserID)
		if err != nil {
			return err
		}
		if wallet.BalanceAvailable+delta < 0 {
			return fmt.Errorf("%w: have %d, need %d", appErr.ErrInsufficientBalance, wallet.BalanceAvailable, -delta)
		}

		wallet.BalanceAvailable += delta
		wallet.BalanceTotal += delta
		switch {
		case e.Type == model.BillingWin:
			wallet.TotalWin += delta
		case delta < 0 && e.Type != model.BillingWithdraw:
			wallet.TotalConsume += -delta
		}

		if err := wallet.save(tx, now); err != nil {
			return err
		}

		log := model.BillingLog{
			UserID:       e.UserID,
			Type:         e.Type,
			Delta:        delta,
			BalanceAfter: wallet.BalanceAvailable,
			MetaJSON:     mustJSON(e.Meta),
			CreatedAt:    now,
		}
		if e.GameID != "" {
			gameID := e.GameID
			log.GameID = &gameID
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}
		result = *wallet.Wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) AdminSetWallet(ctx context.Context, userID int64, req AdminSetWalletRequest) (*model.Wallet, error) {
	if req.BalanceAvailable == nil && req.BalanceFrozen == nil {
		return nil, fmt.Errorf("%w: balanceAvailable or balanceFrozen is required", appErr.ErrInvalidWalletPayload)
	}
	if req.BalanceAvailable != nil && *req.BalanceAvailable < 0 {
		return nil, fmt.Errorf("%w: balanceAvailable must be >= 0", appErr.ErrInvalidWalletPayload)
	}
	if req.BalanceFrozen != nil && *req.BalanceFrozen < 0 {
		return nil, fmt.Errorf("%w: balanceFrozen must be >= 0", appErr.ErrInvalidWalletPayload)
	}

	now := time.Now()
	var result model.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}
		before := wallet.BalanceAvailable
		if req.BalanceAvailable != nil {
			wallet.BalanceAvailable = *req.BalanceAvailable
		}
		if req.BalanceFrozen != nil {
			wallet.BalanceFrozen = *req.BalanceFrozen
		}
		wallet.BalanceTotal = wallet.BalanceAvailable + wallet.BalanceFrozen
		if err := wallet.save(tx, now); err != nil {
			return err
		}

		if delta := wallet.BalanceAvailable - before; delta != 0 {
			if err := tx.Create(&model.BillingLog{
				UserID:       userID,
				Type:         model.BillingAdjust,
				Delta:        delta,
				BalanceAfter: wallet.BalanceAvailable,
				MetaJSON:     mustJSON(nil),
				CreatedAt:    now,
			}).Error; err != nil {
				return err
			}
		}
		result = *wallet.Wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Logs returns the most recent billing rows for a user, newest first.
func (s *Service) Logs(ctx context.Context, userID int64, limit int) ([]model.BillingLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var logs []model.BillingLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func mustJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("{}")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}
