package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"tonk-service/internal/model"
	"tonk-service/internal/service/wallet"
	pkgAuth "tonk-service/pkg/auth"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 6
)

type Service struct {
	db              *gorm.DB
	wallets         *wallet.Service
	startingBalance int64
}

type LoginResult struct {
	Token    string     `json:"token"`
	ExpireAt time.Time  `json:"expireAt"`
	User     model.User `json:"user"`
}

func NewService(db *gorm.DB, wallets *wallet.Service, startingBalance int64) *Service {
	return &Service{
		db:              db,
		wallets:         wallets,
		startingBalance: startingBalance,
	}
}

// Register creates an account, funds its wallet and signs the user in.
func (s *Service) Register(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if n := len(username); n < minUsernameLen || n > maxUsernameLen {
		return nil, appErr.ErrInvalidUsername
	}
	if len(password) < minPasswordLen {
		return nil, appErr.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Username:     username,
		PasswordHash: string(hash),
		Nickname:     username,
		Status:       "normal",
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&exists).Error; err != nil {
			return err
		}
		if exists > 0 {
			return appErr.ErrUsernameTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return appErr.ErrUsernameTaken
			}
			return err
		}
		if s.startingBalance <= 0 {
			return nil
		}
		_, err := s.wallets.WithTx(tx).Credit(ctx, wallet.Entry{
			UserID: user.ID,
			Amount: s.startingBalance,
			Type:   model.BillingSignup,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user registered",
		zap.Int64("userID", user.ID),
		zap.String("username", username))
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, appErr.ErrInvalidCredentials
	}

	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, appErr.ErrInvalidCredentials
	}
	if strings.EqualFold(user.Status, "banned") {
		return nil, appErr.ErrUnauthorized
	}
	return s.issue(user)
}

func (s *Service) issue(user model.User) (*LoginResult, error) {
	token, expireAt, err := pkgAuth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:    token,
		ExpireAt: expireAt,
		User:     user,
	}, nil
}
