package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker grants exclusive access to one game.
type Locker interface {
	Lock(ctx context.Context, gameID string) (unlock func(), err error)
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// NewLocalLocker serializes access within this process.
func NewLocalLocker() Locker {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(ctx context.Context, gameID string) (func(), error) {
	k.mu.Lock()
	m, ok := k.locks[gameID]
	if !ok {
		m = &refMutex{}
		k.locks[gameID] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, gameID)
		}
		k.mu.Unlock()
	}, nil
}

const (
	lockRetryEvery = 50 * time.Millisecond
	lockMaxWait    = 3 * time.Second
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type redisLocker struct {
	local Locker
	rdb   *redis.Client
	ttl   time.Duration
}

// NewRedisLocker adds a SETNX lease on top of the local lock so several
// service instances can share one database.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &redisLocker{local: NewLocalLocker(), rdb: rdb, ttl: ttl}
}

func (l *redisLocker) Lock(ctx context.Context, gameID string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, gameID)
	if err != nil {
		return nil, err
	}

	key := buildGameLockKey(gameID)
	token := uuid.NewString()
	deadline := time.Now().Add(lockMaxWait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			unlockLocal()
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			unlockLocal()
			return nil, appErr.ErrGameBusy
		}
		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		case <-time.After(lockRetryEvery):
		}
	}

	return func() {
		if err := releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err(); err != nil {
			logger.Log.Warn("failed to release game lock", zap.String("gameID", gameID), zap.Error(err))
		}
		unlockLocal()
	}, nil
}

func buildGameLockKey(gameID string) string {
	return fmt.Sprintf("tonk:lock:%s", gameID)
}
