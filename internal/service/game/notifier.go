package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tonk-service/internal/tonk"
	"tonk-service/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier is told about every committed game state.
type Notifier interface {
	Publish(ctx context.Context, g *tonk.Game) error
}

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

const subscriberBuffer = 8

// Subscription receives views of one game rendered for one viewer.
type Subscription struct {
	GameID   string
	ViewerID string
	C        chan OutgoingMessage
}

// Hub fans game states out to websocket subscribers in this process.
type Hub struct {
	mu   sync.Mutex
	seq  int64
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(gameID, viewerID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{
		GameID:   gameID,
		ViewerID: viewerID,
		C:        make(chan OutgoingMessage, subscriberBuffer),
	}
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*Subscription]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.GameID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.C)
	if len(set) == 0 {
		delete(h.subs, sub.GameID)
	}
}

// Publish sends every subscriber its own view. Slow subscribers lose the
// message rather than block the game.
func (h *Hub) Publish(_ context.Context, g *tonk.Game) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[g.ID] {
		h.pushLocked(sub, OutgoingMessage{Type: "state", Data: tonk.View(g, sub.ViewerID)})
	}
	return nil
}

// Broadcast sends msg unchanged to every subscriber of channel.
func (h *Hub) Broadcast(channel string, msg OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[channel] {
		h.pushLocked(sub, msg)
	}
}

// Send delivers a message to a single subscriber.
func (h *Hub) Send(sub *Subscription, msg OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.GameID][sub]; !ok {
		return
	}
	h.pushLocked(sub, msg)
}

func (h *Hub) pushLocked(sub *Subscription, msg OutgoingMessage) {
	h.seq++
	msg.Seq = h.seq
	select {
	case sub.C <- msg:
	default:
		logger.Log.Warn("ws subscriber channel full",
			zap.String("gameID", sub.GameID),
			zap.String("viewerID", sub.ViewerID))
	}
}

// Subscribers reports how many viewers watch gameID or a named channel.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}

// RedisPublisher publishes the spectator view for other instances and
// external consumers.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, g *tonk.Game) error {
	payload, err := json.Marshal(tonk.View(g, ""))
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, ChannelName(g.ID), payload).Err()
}

func ChannelName(gameID string) string {
	return fmt.Sprintf("tonk:game:%s", gameID)
}

// MultiNotifier publishes to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Publish(ctx context.Context, g *tonk.Game) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, g); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, *tonk.Game) error { return nil }
