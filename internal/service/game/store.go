package game

import (
	"time"

	"tonk-service/internal/model"
	"tonk-service/internal/tonk"
	appErr "tonk-service/pkg/errors"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func encodeGame(g *tonk.Game) (datatypes.JSON, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeGame(rec *model.GameRecord) (*tonk.Game, error) {
	var g tonk.Game
	if err := json.Unmarshal(rec.State, &g); err != nil {
		return nil, err
	}
	g.ID = rec.ID
	return &g, nil
}

func loadGame(tx *gorm.DB, id string, forUpdate bool) (*model.GameRecord, *tonk.Game, error) {
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rec model.GameRecord
	if err := q.Where("id = ?", id).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, appErr.ErrGameNotFound
		}
		return nil, nil, err
	}
	g, err := decodeGame(&rec)
	if err != nil {
		return nil, nil, err
	}
	return &rec, g, nil
}

func insertGame(tx *gorm.DB, rec *model.GameRecord, g *tonk.Game, now time.Time) error {
	state, err := encodeGame(g)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Status = string(g.Status)
	rec.Multiplier = g.Multiplier
	rec.Version = 1
	rec.CreatedAt = now
	rec.LastActionAt = now
	return tx.Create(rec).Error
}

// saveGame writes g over rec, guarded by rec.Version.
func saveGame(tx *gorm.DB, rec *model.GameRecord, g *tonk.Game, now time.Time) error {
	state, err := encodeGame(g)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"state":          state,
		"status":         string(g.Status),
		"winner_id":      g.WinnerID,
		"multiplier":     g.Multiplier,
		"version":        rec.Version + 1,
		"last_action_at": now,
	}
	if g.Status == tonk.StatusEnded && rec.EndedAt == nil {
		updates["ended_at"] = now
	}

	res := tx.Model(&model.GameRecord{}).
		Where("id = ? AND version = ?", rec.ID, rec.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appErr.ErrGameConflict
	}
	rec.Version++
	rec.State = state
	rec.Status = string(g.Status)
	rec.LastActionAt = now
	return nil
}
