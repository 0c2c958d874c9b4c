package user

import (
	"context"
	"strings"
	"time"

	"tonk-service/internal/model"
	appErr "tonk-service/pkg/errors"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	Nickname *string
	Avatar   *string
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithTx returns a Service bound to an open transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*model.User, error) {
	updates := map[string]interface{}{}
	if req.Nickname != nil {
		updates["nickname"] = strings.TrimSpace(*req.Nickname)
	}
	if req.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*req.Avatar)
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, appErr.ErrUserNotFound
		}
	}

	return s.GetProfile(ctx, userID)
}

// RecordPlayed counts a finished game for the user.
func (s *Service) RecordPlayed(ctx context.Context, userID int64) error {
	return s.bump(ctx, userID, "games_played")
}

func (s *Service) RecordWon(ctx context.Context, userID int64) error {
	return s.bump(ctx, userID, "games_won")
}

func (s *Service) bump(ctx context.Context, userID int64, column string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appErr.ErrUserNotFound
	}
	return nil
}
