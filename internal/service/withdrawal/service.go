package withdrawal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tonk-service/internal/model"
	"tonk-service/internal/service/wallet"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles payout requests. Funds are held by debiting the wallet on
// submit; a rejection credits them back.
type Service struct {
	db      *gorm.DB
	wallets *wallet.Service
}

// Pending is a withdrawal waiting for an operator, with the requester's name.
type Pending struct {
	model.Withdrawal
	Username string `json:"username"`
}

type ProcessRequest struct {
	Status  string
	Notes   string
	AdminID int64
}

func NewService(db *gorm.DB, wallets *wallet.Service) *Service {
	return &Service{db: db, wallets: wallets}
}

// Submit debits amount from the user's wallet and records a pending request.
func (s *Service) Submit(ctx context.Context, userID, amount int64, cashAppTag string) (*model.Withdrawal, error) {
	if amount <= 0 {
		return nil, appErr.ErrInvalidAmount
	}
	cashAppTag = strings.TrimSpace(cashAppTag)
	if len(cashAppTag) < 2 || !strings.HasPrefix(cashAppTag, "$") {
		return nil, appErr.ErrInvalidCashAppTag
	}

	w := model.Withdrawal{
		UserID:     userID,
		Amount:     amount,
		CashAppTag: cashAppTag,
		Status:     model.WithdrawalPending,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&w).Error; err != nil {
			return err
		}
		_, err := s.wallets.WithTx(tx).Debit(ctx, wallet.Entry{
			UserID: userID,
			Amount: amount,
			Type:   model.BillingWithdraw,
			Meta:   map[string]interface{}{"withdrawalId": w.ID, "cashAppTag": cashAppTag},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("withdrawal submitted",
		zap.Int64("withdrawalID", w.ID),
		zap.Int64("userID", userID),
		zap.Int64("amount", amount))
	return &w, nil
}

// History lists the user's withdrawals, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]model.Withdrawal, error) {
	var out []model.Withdrawal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Pending lists requests awaiting review, oldest first.
func (s *Service) Pending(ctx context.Context) ([]Pending, error) {
	var out []Pending
	if err := s.db.WithContext(ctx).
		Table("withdrawals").
		Select("withdrawals.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = withdrawals.user_id").
		Where("withdrawals.status = ?", model.WithdrawalPending).
		Order("withdrawals.created_at ASC, withdrawals.id ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Process approves or rejects a pending request. Rejecting refunds the held
// amount in the same transaction.
func (s *Service) Process(ctx context.Context, id int64, req ProcessRequest) (*model.Withdrawal, error) {
	if req.Status != model.WithdrawalApproved && req.Status != model.WithdrawalRejected {
		return nil, appErr.ErrInvalidWithdrawalStatus
	}

	var w model.Withdrawal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&w).Error
		if err == gorm.ErrRecordNotFound {
			return appErr.ErrWithdrawalNotFound
		}
		if err != nil {
			return err
		}
		if w.Status != model.WithdrawalPending {
			return fmt.Errorf("%w: %s", appErr.ErrWithdrawalProcessed, w.Status)
		}

		now := time.Now()
		w.Status = req.Status
		w.AdminNotes = req.Notes
		w.ProcessedAt = &now
		if req.AdminID > 0 {
			adminID := req.AdminID
			w.ProcessedBy = &adminID
		}
		if err := tx.Save(&w).Error; err != nil {
			return err
		}

		if req.Status == model.WithdrawalRejected {
			_, err := s.wallets.WithTx(tx).Credit(ctx, wallet.Entry{
				UserID: w.UserID,
				Amount: w.Amount,
				Type:   model.BillingWithdrawRefund,
				Meta:   map[string]interface{}{"withdrawalId": w.ID},
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("withdrawal processed",
		zap.Int64("withdrawalID", w.ID),
		zap.Int64("userID", w.UserID),
		zap.String("status", w.Status),
		zap.Int64("adminID", req.AdminID))
	return &w, nil
}
