package repo

import (
	"context"
	"time"

	"tonk-service/internal/config"
	"tonk-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RDB is nil when redis is disabled. The game service then locks games and
// fans out updates inside this process only.
var RDB *redis.Client

func OpenRedis(ctx context.Context, conf config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func InitRedis() {
	conf := config.GlobalConfig.Redis
	if !conf.Enabled {
		logger.Log.Info("redis disabled")
		return
	}
	rdb, err := OpenRedis(context.Background(), conf)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.String("addr", conf.Addr), zap.Error(err))
	}
	RDB = rdb
}
