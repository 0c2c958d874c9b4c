package model

import (
	"time"

	"gorm.io/datatypes"
)

// Accounts

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"size:32;unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Nickname     string
	Avatar       string
	GamesPlayed  int64  `gorm:"default:0"`
	GamesWon     int64  `gorm:"default:0"`
	Status       string `gorm:"default:normal;not null"` // normal/banned
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Admin struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"size:32;unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string
	Status       string `gorm:"default:active;not null"` // active/disabled
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Wallet & Billing

type Wallet struct {
	UserID           int64 `gorm:"primaryKey"`
	BalanceTotal     int64
	BalanceAvailable int64
	BalanceFrozen    int64
	TotalWin         int64
	TotalConsume     int64
	UpdatedAt        time.Time
}

const (
	BillingSignup = "signup"
	BillingStake  = "stake"
	BillingWin    = "win"
	BillingAdjust = "adjust"

	BillingWithdraw       = "withdraw"
	BillingWithdrawRefund = "withdraw_refund"
)

type BillingLog struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	UserID       int64 `gorm:"index"`
	Type         string
	Delta        int64
	BalanceAfter int64
	GameID       *string `gorm:"size:36;index"`
	MetaJSON     datatypes.JSON
	CreatedAt    time.Time
}

// Withdrawals

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

// Withdrawal is a payout request. The amount leaves the wallet on submit and
// comes back only if an operator rejects it.
type Withdrawal struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	UserID      int64  `gorm:"index;not null"`
	Amount      int64  `gorm:"not null"`
	CashAppTag  string `gorm:"size:64;not null"`
	Status      string `gorm:"size:16;index;default:pending;not null"`
	AdminNotes  string
	ProcessedAt *time.Time
	ProcessedBy *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tables & Games

type StakeTable struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	Stake          int64 `gorm:"unique;not null"`
	CurrentPlayers int   `gorm:"default:0"`
	ActiveGames    int   `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GameRecord persists one game document. Version increases on every save.
type GameRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	StakeTableID int64  `gorm:"index"`
	OwnerID      int64
	Stake        int64
	Status       string `gorm:"size:16;index"`
	WinnerID     string `gorm:"size:64"`
	Multiplier   int
	State        datatypes.JSON
	Version      int64
	CreatedAt    time.Time
	LastActionAt time.Time
	EndedAt      *time.Time
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Admin{},
		&Wallet{},
		&BillingLog{},
		&Withdrawal{},
		&StakeTable{},
		&GameRecord{},
	}
}
