package errors

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username must be 3-32 characters")
	ErrInvalidPassword    = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUserStatus  = errors.New("status must be normal or banned")

	ErrAdminNotFound        = errors.New("admin not found")
	ErrAdminDisabled        = errors.New("admin disabled")
	ErrInvalidAdminPassword = errors.New("invalid admin credentials")

	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidWalletPayload = errors.New("invalid wallet payload")
	ErrInvalidAmount        = errors.New("amount must be positive")

	ErrGameNotFound = errors.New("game not found")
	ErrGameConflict = errors.New("game was modified by another request")
	ErrGameBusy     = errors.New("game is busy, retry shortly")

	ErrTableNotFound   = errors.New("stake table not found")
	ErrStakeNotOffered = errors.New("stake is not offered")
	ErrTableBusy       = errors.New("stake table has games in progress")
	ErrStakeExists     = errors.New("a table already serves this stake")

	ErrWithdrawalNotFound      = errors.New("withdrawal not found")
	ErrWithdrawalProcessed     = errors.New("withdrawal already processed")
	ErrInvalidCashAppTag       = errors.New("cash app tag must start with $")
	ErrInvalidWithdrawalStatus = errors.New("status must be approved or rejected")
)
