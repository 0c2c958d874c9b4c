package game

import (
	"context"
	"errors"
	"time"

	"tonk-service/internal/model"
	"tonk-service/internal/tonk"
	"tonk-service/pkg/logger"

	"go.uber.org/zap"
)

// LobbyChannel is the hub channel lobby watchers subscribe to.
const LobbyChannel = "lobby"

// LobbySnapshot is what the lobby shows between games.
type LobbySnapshot struct {
	PlayerCount int                `json:"playerCount"`
	Tables      []model.StakeTable `json:"tables"`
}

// ListByTable returns the running games at one stake table, newest activity
// first.
func (s *Service) ListByTable(ctx context.Context, tableID int64, limit int) ([]Summary, error) {
	if _, err := s.tables.Get(ctx, tableID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var recs []model.GameRecord
	if err := s.db.WithContext(ctx).
		Select("id", "stake", "status", "version", "last_action_at").
		Where("stake_table_id = ? AND status = ?", tableID, string(tonk.StatusInProgress)).
		Order("last_action_at DESC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return summarize(recs), nil
}

// PlayerCount counts distinct people seated in games that have not ended.
// Players who dropped still count until their game ends.
func (s *Service) PlayerCount(ctx context.Context) (int, error) {
	var recs []model.GameRecord
	if err := s.db.WithContext(ctx).
		Select("id", "state").
		Where("status <> ?", string(tonk.StatusEnded)).
		Find(&recs).Error; err != nil {
		return 0, err
	}
	seen := make(map[string]struct{})
	for i := range recs {
		g, err := decodeGame(&recs[i])
		if err != nil {
			return 0, err
		}
		for _, p := range g.Players {
			if !p.IsBot {
				seen[p.ID] = struct{}{}
			}
		}
	}
	return len(seen), nil
}

func (s *Service) Lobby(ctx context.Context) (*LobbySnapshot, error) {
	count, err := s.PlayerCount(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, err
	}
	return &LobbySnapshot{PlayerCount: count, Tables: tables}, nil
}

// LobbyBroadcaster pushes lobby snapshots to the hub's lobby channel on a
// fixed interval.
type LobbyBroadcaster struct {
	games *Service
	hub   *Hub
	every time.Duration
}

func NewLobbyBroadcaster(games *Service, hub *Hub, every time.Duration) *LobbyBroadcaster {
	if every <= 0 {
		every = 10 * time.Second
	}
	return &LobbyBroadcaster{games: games, hub: hub, every: every}
}

// Broadcast sends one snapshot. Nothing is queried while nobody watches.
func (b *LobbyBroadcaster) Broadcast(ctx context.Context) error {
	if b.hub.Subscribers(LobbyChannel) == 0 {
		return nil
	}
	snap, err := b.games.Lobby(ctx)
	if err != nil {
		return err
	}
	b.hub.Broadcast(LobbyChannel, OutgoingMessage{Type: "lobby", Data: snap})
	return nil
}

// Run broadcasts until ctx is done. A failed snapshot is logged and the next
// tick tries again.
func (b *LobbyBroadcaster) Run(ctx context.Context) error {
	w := b.games.clock.TickerFunc(ctx, b.every, func() error {
		if err := b.Broadcast(ctx); err != nil {
			logger.Log.Warn("lobby broadcast failed", zap.Error(err))
		}
		return nil
	}, "lobby")
	err := w.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func summarize(recs []model.GameRecord) []Summary {
	out := make([]Summary, 0, len(recs))
	for _, r := range recs {
		out = append(out, Summary{
			ID:           r.ID,
			Stake:        r.Stake,
			Status:       r.Status,
			Version:      r.Version,
			LastActionAt: r.LastActionAt.UnixMilli(),
		})
	}
	return out
}
