package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"tonk-service/internal/model"
	"tonk-service/internal/service/table"
	"tonk-service/internal/tonk"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/logger"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Identity is an authenticated player.
type Identity struct {
	UserID int64
	Name   string
	Avatar string
}

func (i Identity) playerID() string {
	return strconv.FormatInt(i.UserID, 10)
}

func (i Identity) seat() tonk.Identity {
	return tonk.Identity{ID: i.playerID(), Name: i.Name, Avatar: i.Avatar}
}

// Summary lists a game without its hidden state.
type Summary struct {
	ID           string `json:"id"`
	Stake        int64  `json:"stake"`
	Status       string `json:"status"`
	Version      int64  `json:"version"`
	LastActionAt int64  `json:"lastActionAt"`
}

// Service orchestrates games: it serializes access per game, runs the engine,
// persists the result and settles money in one transaction.
type Service struct {
	db       *gorm.DB
	engine   *tonk.Engine
	tables   *table.Service
	ledger   LedgerFactory
	locker   Locker
	notifier Notifier
	clock    quartz.Clock
}

type Option func(*Service)

func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(c quartz.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func NewService(db *gorm.DB, engine *tonk.Engine, tables *table.Service, ledger LedgerFactory, opts ...Option) *Service {
	s := &Service{
		db:       db,
		engine:   engine,
		tables:   tables,
		ledger:   ledger,
		locker:   NewLocalLocker(),
		notifier: nopNotifier{},
		clock:    quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create deals a new game for who at the given stake and charges the stake.
func (s *Service) Create(ctx context.Context, who Identity, stake int64) (*tonk.PublicGame, error) {
	if stake <= 0 {
		return nil, tonk.ErrInvalidStake
	}
	g, err := s.engine.Create(stake, who.seat())
	if err != nil {
		return nil, err
	}
	g.ID = uuid.NewString()

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tbl, err := s.tables.WithTx(tx).Resolve(ctx, stake)
		if err != nil {
			return err
		}
		rec := &model.GameRecord{
			ID:           g.ID,
			StakeTableID: tbl.ID,
			OwnerID:      who.UserID,
			Stake:        stake,
		}
		if err := insertGame(tx, rec, g, now); err != nil {
			return err
		}
		if err := s.ledger(tx).ChargeStake(ctx, who.UserID, stake, g.ID); err != nil {
			return err
		}
		return s.tables.WithTx(tx).Attach(ctx, tbl.ID, 1, true)
	})
	if err != nil {
		return nil, err
	}

	logger.Game(g.ID).Info("game created",
		zap.Int64("userID", who.UserID),
		zap.Int64("stake", stake))
	s.publish(ctx, g)
	view := tonk.View(g, who.playerID())
	return &view, nil
}

// Join seats who in place of a bot and charges the stake.
func (s *Service) Join(ctx context.Context, gameID string, who Identity) (*tonk.PublicGame, error) {
	next, err := s.mutate(ctx, gameID, func(tx *gorm.DB, rec *model.GameRecord, g *tonk.Game) (*tonk.Game, error) {
		next, err := s.engine.Join(g, who.seat())
		if err != nil {
			return nil, err
		}
		if err := s.ledger(tx).ChargeStake(ctx, who.UserID, rec.Stake, rec.ID); err != nil {
			return nil, err
		}
		if err := s.tables.WithTx(tx).Attach(ctx, rec.StakeTableID, 1, false); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Game(gameID).Info("player joined", zap.Int64("userID", who.UserID))
	view := tonk.View(next, who.playerID())
	return &view, nil
}

// Act applies one action for who, then whatever bot turns follow it.
func (s *Service) Act(ctx context.Context, gameID string, who Identity, action tonk.Action) (*tonk.PublicGame, error) {
	next, err := s.mutate(ctx, gameID, func(tx *gorm.DB, rec *model.GameRecord, g *tonk.Game) (*tonk.Game, error) {
		next, err := s.engine.Act(g, who.playerID(), action)
		if err != nil {
			if tonk.IsFault(err) {
				logger.Game(gameID).Error("engine fault, action rolled back",
					zap.Int64("userID", who.UserID),
					zap.String("action", string(action.Kind)),
					zap.Error(err))
			}
			return nil, err
		}
		if next.Status == tonk.StatusEnded && g.Status != tonk.StatusEnded {
			if err := s.settle(ctx, tx, rec, next); err != nil {
				return nil, err
			}
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	view := tonk.View(next, who.playerID())
	return &view, nil
}

// Get renders the game for viewerID; non-players get the spectator view.
func (s *Service) Get(ctx context.Context, gameID string, viewerID int64) (*tonk.PublicGame, error) {
	_, g, err := loadGame(s.db.WithContext(ctx), gameID, false)
	if err != nil {
		return nil, err
	}
	view := tonk.View(g, viewerOf(g, viewerID))
	return &view, nil
}

// State returns the raw game for internal consumers such as the websocket hub.
func (s *Service) State(ctx context.Context, gameID string) (*tonk.Game, error) {
	_, g, err := loadGame(s.db.WithContext(ctx), gameID, false)
	return g, err
}

// ListActive returns running games, most recently played first.
func (s *Service) ListActive(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var recs []model.GameRecord
	if err := s.db.WithContext(ctx).
		Select("id", "stake", "status", "version", "last_action_at").
		Where("status = ?", string(tonk.StatusInProgress)).
		Order("last_action_at DESC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return summarize(recs), nil
}

type mutation func(tx *gorm.DB, rec *model.GameRecord, g *tonk.Game) (*tonk.Game, error)

// mutate runs fn under the game lock inside one transaction and publishes the
// committed state. Any error discards every change fn made.
func (s *Service) mutate(ctx context.Context, gameID string, fn mutation) (*tonk.Game, error) {
	unlock, err := s.locker.Lock(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var next *tonk.Game
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, g, err := loadGame(tx, gameID, true)
		if err != nil {
			return err
		}
		next, err = fn(tx, rec, g)
		if err != nil {
			return err
		}
		return saveGame(tx, rec, next, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, next)
	return next, nil
}

func (s *Service) settle(ctx context.Context, tx *gorm.DB, rec *model.GameRecord, g *tonk.Game) error {
	st, ok := g.Settlement()
	if !ok {
		return nil
	}
	ledger := s.ledger(tx)

	for _, id := range st.Humans {
		userID, err := parseUserID(id)
		if err != nil {
			return err
		}
		if err := ledger.RecordPlayed(ctx, userID); err != nil {
			return err
		}
	}
	if !st.WinnerIsBot {
		winnerID, err := parseUserID(st.WinnerID)
		if err != nil {
			return err
		}
		if err := ledger.PayWinnings(ctx, winnerID, st.Amount, st.GameID, st.Multiplier); err != nil {
			return err
		}
		if err := ledger.RecordWon(ctx, winnerID); err != nil {
			return err
		}
	}
	if err := s.tables.WithTx(tx).Detach(ctx, rec.StakeTableID, len(st.Humans)); err != nil {
		return err
	}

	logger.Game(st.GameID).Info("game settled",
		zap.String("winner", st.WinnerID),
		zap.Bool("winnerIsBot", st.WinnerIsBot),
		zap.Int("multiplier", st.Multiplier),
		zap.Int64("amount", st.Amount))
	return nil
}

func (s *Service) publish(ctx context.Context, g *tonk.Game) {
	if err := s.notifier.Publish(ctx, g); err != nil {
		logger.Game(g.ID).Warn("failed to publish game state", zap.Error(err))
	}
}

func viewerOf(g *tonk.Game, userID int64) string {
	if userID <= 0 {
		return ""
	}
	id := strconv.FormatInt(userID, 10)
	if _, ok := g.SeatOf(id); ok {
		return id
	}
	return ""
}

func parseUserID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid player id %q: %w", id, errors.Join(err, appErr.ErrUserNotFound))
	}
	return v, nil
}
