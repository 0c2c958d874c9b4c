package wallet_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tonk-service/internal/model"
	"tonk-service/internal/service/wallet"
	appErr "tonk-service/pkg/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newWalletService(t *testing.T) (*gorm.DB, *wallet.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Wallet{}, &model.BillingLog{}); err != nil {
		t.Fatalf("failed to migrate wallet models: %v", err)
	}
	return db, wallet.NewService(db)
}

func TestCreditCreatesWallet(t *testing.T) {
	ctx := context.Background()
	db, svc := newWalletService(t)

	w, err := svc.Credit(ctx, wallet.Entry{UserID: 1, Amount: 500, Type: model.BillingSignup})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if w.BalanceAvailable != 500 || w.BalanceTotal != 500 {
		t.Fatalf("unexpected wallet: %+v", w)
	}

	var logs []model.BillingLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Delta != 500 || logs[0].BalanceAfter != 500 {
		t.Fatalf("unexpected billing logs: %+v", logs)
	}
}

func TestDebitRecordsStake(t *testing.T) {
	ctx := context.Background()
	db, svc := newWalletService(t)

	if _, err := svc.Credit(ctx, wallet.Entry{UserID: 2, Amount: 100, Type: model.BillingSignup}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	w, err := svc.Debit(ctx, wallet.Entry{UserID: 2, Amount: 30, Type: model.BillingStake, GameID: "g-1"})
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if w.BalanceAvailable != 70 || w.TotalConsume != 30 {
		t.Fatalf("unexpected wallet: %+v", w)
	}

	var log model.BillingLog
	if err := db.Where("type = ?", model.BillingStake).First(&log).Error; err != nil {
		t.Fatalf("load stake log: %v", err)
	}
	if log.GameID == nil || *log.GameID != "g-1" || log.Delta != -30 {
		t.Fatalf("unexpected stake log: %+v", log)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	db, svc := newWalletService(t)

	if _, err := svc.Credit(ctx, wallet.Entry{UserID: 3, Amount: 10, Type: model.BillingSignup}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	_, err := svc.Debit(ctx, wallet.Entry{UserID: 3, Amount: 11, Type: model.BillingStake})
	if !errors.Is(err, appErr.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	var count int64
	db.Model(&model.BillingLog{}).Where("type = ?", model.BillingStake).Count(&count)
	if count != 0 {
		t.Fatalf("failed debit must not leave a log, got %d", count)
	}
	w, _ := svc.GetWallet(ctx, 3)
	if w.BalanceAvailable != 10 {
		t.Fatalf("balance changed: %+v", w)
	}
}

func TestMoveRejectsNonPositiveAmount(t *testing.T) {
	_, svc := newWalletService(t)
	if _, err := svc.Credit(context.Background(), wallet.Entry{UserID: 1, Amount: 0}); !errors.Is(err, appErr.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAdminSetWallet(t *testing.T) {
	ctx := context.Background()
	db, svc := newWalletService(t)

	available := int64(250)
	w, err := svc.AdminSetWallet(ctx, 4, wallet.AdminSetWalletRequest{BalanceAvailable: &available})
	if err != nil {
		t.Fatalf("admin set failed: %v", err)
	}
	if w.BalanceAvailable != 250 || w.BalanceTotal != 250 {
		t.Fatalf("unexpected wallet: %+v", w)
	}

	var log model.BillingLog
	if err := db.Where("type = ?", model.BillingAdjust).First(&log).Error; err != nil {
		t.Fatalf("load adjust log: %v", err)
	}
	if log.Delta != 250 {
		t.Fatalf("unexpected adjust delta %d", log.Delta)
	}

	if _, err := svc.AdminSetWallet(ctx, 4, wallet.AdminSetWalletRequest{}); !errors.Is(err, appErr.ErrInvalidWalletPayload) {
		t.Fatalf("expected payload error, got %v", err)
	}
}

func TestGetWalletMissingReturnsEmpty(t *testing.T) {
	_, svc := newWalletService(t)
	w, err := svc.GetWallet(context.Background(), 99)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if w.UserID != 99 || w.BalanceAvailable != 0 {
		t.Fatalf("unexpected wallet: %+v", w)
	}
}

func TestMovesInOneTransactionShareTheRow(t *testing.T) {
	ctx := context.Background()
	db, svc := newWalletService(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		bound := svc.WithTx(tx)
		if _, err := bound.Credit(ctx, wallet.Entry{UserID: 7, Amount: 100, Type: model.BillingSignup}); err != nil {
			return err
		}
		if _, err := bound.Debit(ctx, wallet.Entry{UserID: 7, Amount: 30, Type: model.BillingStake, GameID: "g-1"}); err != nil {
			return err
		}
		_, err := bound.Debit(ctx, wallet.Entry{UserID: 7, Amount: 80, Type: model.BillingStake, GameID: "g-2"})
		if !errors.Is(err, appErr.ErrInsufficientBalance) {
			t.Fatalf("expected insufficient balance on the locked row, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	var rows []model.Wallet
	if err := db.Where("user_id = ?", 7).Find(&rows).Error; err != nil {
		t.Fatalf("load wallets: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single wallet row, got %d", len(rows))
	}
	if rows[0].BalanceAvailable != 70 || rows[0].TotalConsume != 30 || rows[0].UpdatedAt.IsZero() {
		t.Fatalf("unexpected wallet: %+v", rows[0])
	}
}
