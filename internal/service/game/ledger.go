package game

import (
	"context"

	"tonk-service/internal/model"
	"tonk-service/internal/service/user"
	"tonk-service/internal/service/wallet"

	"gorm.io/gorm"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks tonk-service/internal/service/game Ledger,Notifier

// Ledger moves money and records results for human players. Calls happen
// inside the game transaction.
type Ledger interface {
	ChargeStake(ctx context.Context, userID, amount int64, gameID string) error
	PayWinnings(ctx context.Context, userID, amount int64, gameID string, multiplier int) error
	RecordPlayed(ctx context.Context, userID int64) error
	RecordWon(ctx context.Context, userID int64) error
}

// LedgerFactory binds a Ledger to a transaction.
type LedgerFactory func(tx *gorm.DB) Ledger

type serviceLedger struct {
	wallets *wallet.Service
	users   *user.Service
}

// NewLedgerFactory backs the Ledger with the wallet and user services.
func NewLedgerFactory(wallets *wallet.Service, users *user.Service) LedgerFactory {
	return func(tx *gorm.DB) Ledger {
		return &serviceLedger{
			wallets: wallets.WithTx(tx),
			users:   users.WithTx(tx),
		}
	}
}

func (l *serviceLedger) ChargeStake(ctx context.Context, userID, amount int64, gameID string) error {
	_, err := l.wallets.Debit(ctx, wallet.Entry{
		UserID: userID,
		Amount: amount,
		Type:   model.BillingStake,
		GameID: gameID,
	})
	return err
}

func (l *serviceLedger) PayWinnings(ctx context.Context, userID, amount int64, gameID string, multiplier int) error {
	_, err := l.wallets.Credit(ctx, wallet.Entry{
		UserID: userID,
		Amount: amount,
		Type:   model.BillingWin,
		GameID: gameID,
		Meta:   map[string]interface{}{"multiplier": multiplier},
	})
	return err
}

func (l *serviceLedger) RecordPlayed(ctx context.Context, userID int64) error {
	return l.users.RecordPlayed(ctx, userID)
}

func (l *serviceLedger) RecordWon(ctx context.Context, userID int64) error {
	return l.users.RecordWon(ctx, userID)
}
