package service

import (
	"context"

	"tonk-service/internal/config"
	"tonk-service/internal/model"
	"tonk-service/internal/service/admin"
	"tonk-service/internal/service/auth"
	"tonk-service/internal/service/game"
	"tonk-service/internal/service/table"
	"tonk-service/internal/service/user"
	"tonk-service/internal/service/wallet"
	"tonk-service/internal/service/withdrawal"
	"tonk-service/internal/tonk"
	"tonk-service/pkg/logger"
	"tonk-service/pkg/utils/random"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Container struct {
	Auth       *auth.Service
	Admin      *admin.Service
	User       *user.Service
	Wallet     *wallet.Service
	Withdrawal *withdrawal.Service
	Table      *table.Service
	Game       *game.Service
	Hub        *game.Hub
	Lobby      *game.LobbyBroadcaster

	stakes    []int64
	adminSeed config.AdminSeedConfig
}

func NewContainer(db *gorm.DB, rdb *redis.Client, cfg config.GameConfig, adminSeed config.AdminSeedConfig) *Container {
	wallets := wallet.NewService(db)
	users := user.NewService(db)
	tables := table.NewService(db)
	hub := game.NewHub()

	seed := cfg.Seed
	if seed == 0 {
		seed = random.Seed()
	}
	logger.Log.Info("game engine seeded", zap.Int64("seed", seed))
	engine := tonk.NewEngine(random.NewLocked(seed),
		tonk.WithBotAvatar(cfg.BotAvatar),
		tonk.WithMaxAutomatedTurns(cfg.MaxAutomatedTurns),
	)

	gameOpts := []game.Option{game.WithNotifier(hub)}
	if rdb != nil {
		gameOpts = []game.Option{
			game.WithLocker(game.NewRedisLocker(rdb, cfg.LockTTLDuration())),
			game.WithNotifier(game.MultiNotifier{hub, game.NewRedisPublisher(rdb)}),
		}
	}

	games := game.NewService(db, engine, tables, game.NewLedgerFactory(wallets, users), gameOpts...)

	return &Container{
		Auth:       auth.NewService(db, wallets, cfg.StartingBalance),
		Admin:      admin.NewService(db),
		User:       users,
		Wallet:     wallets,
		Withdrawal: withdrawal.NewService(db, wallets),
		Table:      tables,
		Game:       games,
		Hub:        hub,
		Lobby:      game.NewLobbyBroadcaster(games, hub, cfg.LobbyIntervalDuration()),
		stakes:     cfg.Stakes,
		adminSeed:  adminSeed,
	}
}

// Start seeds the operator account and the configured stake tables.
func (c *Container) Start(ctx context.Context) error {
	if err := c.Admin.EnsureDefaultAdmin(ctx, c.adminSeed); err != nil {
		return err
	}
	return c.Table.EnsureStakes(ctx, c.stakes)
}

// InitTables recreates any configured stake table that has gone missing.
func (c *Container) InitTables(ctx context.Context) ([]model.StakeTable, error) {
	if err := c.Table.EnsureStakes(ctx, c.stakes); err != nil {
		return nil, err
	}
	return c.Table.List(ctx)
}
