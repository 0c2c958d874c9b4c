package table

import (
	"context"
	"fmt"

	"tonk-service/internal/model"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service keeps one stake table per offered stake, with live player and game
// counts.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithTx returns a Service bound to an open transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx}
}

// EnsureStakes creates a table for every stake that does not have one yet.
func (s *Service) EnsureStakes(ctx context.Context, stakes []int64) error {
	for _, stake := range stakes {
		if stake <= 0 {
			return fmt.Errorf("%w: %d", appErr.ErrStakeNotOffered, stake)
		}
		t := model.StakeTable{Stake: stake}
		res := s.db.WithContext(ctx).Where("stake = ?", stake).FirstOrCreate(&t)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			logger.Log.Info("stake table created", zap.Int64("stake", stake), zap.Int64("tableID", t.ID))
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]model.StakeTable, error) {
	var tables []model.StakeTable
	if err := s.db.WithContext(ctx).Order("stake ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *Service) Get(ctx context.Context, tableID int64) (*model.StakeTable, error) {
	var t model.StakeTable
	err := s.db.WithContext(ctx).Where("id = ?", tableID).First(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, appErr.ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update moves a table to a new stake. Tables with games in progress keep
// their stake until those games settle.
func (s *Service) Update(ctx context.Context, tableID, stake int64) (*model.StakeTable, error) {
	if stake <= 0 {
		return nil, appErr.ErrInvalidAmount
	}
	var out *model.StakeTable
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.WithTx(tx).Get(ctx, tableID)
		if err != nil {
			return err
		}
		if t.Stake == stake {
			out = t
			return nil
		}
		if t.ActiveGames > 0 {
			return fmt.Errorf("%w: %d active", appErr.ErrTableBusy, t.ActiveGames)
		}
		var taken int64
		if err := tx.Model(&model.StakeTable{}).Where("stake = ?", stake).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("%w: %d", appErr.ErrStakeExists, stake)
		}
		if err := tx.Model(t).Update("stake", stake).Error; err != nil {
			return err
		}
		t.Stake = stake
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("stake table updated", zap.Int64("tableID", tableID), zap.Int64("stake", stake))
	return out, nil
}

// Resolve finds the table for stake. With no tables configured at all, any
// positive stake gets a table on demand.
func (s *Service) Resolve(ctx context.Context, stake int64) (*model.StakeTable, error) {
	var t model.StakeTable
	err := s.db.WithContext(ctx).Where("stake = ?", stake).First(&t).Error
	if err == nil {
		return &t, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.StakeTable{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if total > 0 {
		return nil, fmt.Errorf("%w: %d", appErr.ErrStakeNotOffered, stake)
	}
	t = model.StakeTable{Stake: stake}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Attach adds players to a table, counting a new game when newGame is set.
func (s *Service) Attach(ctx context.Context, tableID int64, players int, newGame bool) error {
	updates := map[string]interface{}{
		"current_players": gorm.Expr("current_players + ?", players),
	}
	if newGame {
		updates["active_games"] = gorm.Expr("active_games + ?", 1)
	}
	return s.update(ctx, tableID, updates)
}

// Detach releases players and one active game. Counts never drop below zero.
func (s *Service) Detach(ctx context.Context, tableID int64, players int) error {
	return s.update(ctx, tableID, map[string]interface{}{
		"current_players": gorm.Expr("CASE WHEN current_players > ? THEN current_players - ? ELSE 0 END", players, players),
		"active_games":    gorm.Expr("CASE WHEN active_games > 0 THEN active_games - 1 ELSE 0 END"),
	})
}

func (s *Service) update(ctx context.Context, tableID int64, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&model.StakeTable{}).Where("id = ?", tableID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appErr.ErrTableNotFound
	}
	return nil
}
