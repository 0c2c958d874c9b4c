package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"tonk-service/internal/config"
	"tonk-service/internal/model"
	pkgAuth "tonk-service/pkg/auth"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	minPasswordLen  = 6
)

// Service manages operator accounts and the moderation tools they use on
// players.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

type Session struct {
	Token    string      `json:"token"`
	ExpireAt time.Time   `json:"expireAt"`
	Admin    model.Admin `json:"admin"`
}

type UserPage struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	admin, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, expireAt, err := pkgAuth.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.db.WithContext(ctx).Model(admin).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, err
	}
	admin.LastLoginAt = &now

	logger.Log.Info("admin signed in", zap.Int64("adminID", admin.ID))
	return &Session{Token: token, ExpireAt: expireAt, Admin: *admin}, nil
}

// ChangePassword replaces the operator's password after re-checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, adminID int64, current, next string) error {
	if len(next) < minPasswordLen {
		return appErr.ErrInvalidPassword
	}

	var admin model.Admin
	if err := s.db.WithContext(ctx).First(&admin, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.ErrAdminNotFound
		}
		return err
	}
	if _, err := s.authenticate(ctx, admin.Username, current); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&admin).Updates(map[string]interface{}{
		"password_hash": string(hash),
		"updated_at":    s.now(),
	}).Error
}

// authenticate resolves an active admin by credentials.
func (s *Service) authenticate(ctx context.Context, username, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, appErr.ErrInvalidAdminPassword
	}

	var admin model.Admin
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, appErr.ErrAdminNotFound
	case err != nil:
		return nil, err
	case admin.Status != "active":
		return nil, appErr.ErrAdminDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, appErr.ErrInvalidAdminPassword
	}
	return &admin, nil
}

// EnsureDefaultAdmin creates the seed operator unless an admin with that
// username already exists. An existing account keeps its password.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, seed config.AdminSeedConfig) error {
	if seed.DefaultUsername == "" || seed.DefaultPassword == "" {
		logger.Log.Warn("no admin seed configured")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(&model.Admin{
			Username:     seed.DefaultUsername,
			PasswordHash: string(hash),
			DisplayName:  seed.DefaultUsername,
			Status:       "active",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.Log.Info("seed admin created", zap.String("username", seed.DefaultUsername))
	}
	return nil
}

// ListUsers pages through players, optionally filtered by status and a
// username fragment.
func (s *Service) ListUsers(ctx context.Context, page, size int, status, keyword string) (*UserPage, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}

	q := s.db.WithContext(ctx).Model(&model.User{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		q = q.Where("username LIKE ?", "%"+keyword+"%")
	}

	var out UserPage
	if err := q.Count(&out.Total).Error; err != nil {
		return nil, err
	}
	if err := q.Order("id ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&out.Items).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserStatus bans or reinstates a player. Banned players cannot log in.
func (s *Service) SetUserStatus(ctx context.Context, userID int64, status, reason string) (*model.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "normal" && status != "banned" {
		return nil, appErr.ErrInvalidUserStatus
	}

	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": s.now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, appErr.ErrUserNotFound
	}
	logger.Log.Info("user status changed",
		zap.Int64("userID", userID),
		zap.String("status", status),
		zap.String("reason", reason))

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
