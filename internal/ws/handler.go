package ws

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tonk-service/internal/middleware"
	"tonk-service/internal/service/game"
	"tonk-service/internal/tonk"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/logger"
	"tonk-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	games *game.Service
	hub   *game.Hub
}

func NewHandler(games *game.Service, hub *game.Hub) *Handler {
	return &Handler{games: games, hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// HandleGameWS streams a game to one viewer. Authenticated players may also
// send actions; anonymous connections only spectate.
func (h *Handler) HandleGameWS(c *gin.Context) {
	gameID := c.Param("id")
	var userID int64
	if v, ok := c.Get(middleware.ContextUserIDKey); ok {
		userID, _ = v.(int64)
	}

	if _, err := h.games.State(c.Request.Context(), gameID); err != nil {
		if errors.Is(err, appErr.ErrGameNotFound) {
			response.Error(c, http.StatusNotFound, "game not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load game")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New WebSocket connection",
		zap.String("gameID", gameID),
		zap.Int64("userID", userID),
	)

	viewer := ""
	if userID > 0 {
		viewer = strconv.FormatInt(userID, 10)
	}
	cl := newClient(conn, h, h.hub.Subscribe(gameID, viewer), userID)

	view, err := h.games.Get(c.Request.Context(), gameID, userID)
	if err == nil {
		h.hub.Send(cl.sub, game.OutgoingMessage{Type: "state", Data: view})
	}
	cl.run(c.Request.Context())
}

// HandleLobbyWS streams lobby snapshots. Incoming messages are ignored.
func (h *Handler) HandleLobbyWS(c *gin.Context) {
	snap, err := h.games.Lobby(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load lobby")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	cl := newClient(conn, h, h.hub.Subscribe(game.LobbyChannel, ""), 0)
	h.hub.Send(cl.sub, game.OutgoingMessage{Type: "lobby", Data: snap})
	cl.run(c.Request.Context())
}

type client struct {
	conn      *websocket.Conn
	h         *Handler
	sub       *game.Subscription
	userID    int64
	done      chan struct{}
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, h *Handler, sub *game.Subscription, userID int64) *client {
	conn.SetReadLimit(1 << 16)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		h:         h,
		sub:       sub,
		userID:    userID,
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

type incomingMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type actionPayload struct {
	CardID      string `json:"cardId"`
	FromDiscard bool   `json:"fromDiscard"`
}

func (c *client) readPump(ctx context.Context) {
	defer func() {
		close(c.done)
		c.h.hub.Unsubscribe(c.sub)
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.Int64("userID", c.userID), zap.String("gameID", c.sub.GameID))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming incomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.sendError("invalid payload")
			continue
		}
		if incoming.Type == "" || c.sub.GameID == game.LobbyChannel {
			continue
		}
		if c.userID <= 0 {
			c.sendError("login required to play")
			continue
		}

		var payload actionPayload
		if len(incoming.Data) > 0 {
			if err := json.Unmarshal(incoming.Data, &payload); err != nil {
				c.sendError("invalid payload")
				continue
			}
		}
		action := tonk.Action{
			Kind:        tonk.ActionKind(incoming.Type),
			CardID:      payload.CardID,
			FromDiscard: payload.FromDiscard,
		}
		if _, err := c.h.games.Act(ctx, c.sub.GameID, game.Identity{UserID: c.userID}, action); err != nil {
			c.sendError("action failed: " + err.Error())
		}
	}
}

// sendError goes through the hub so writePump stays the only writer.
func (c *client) sendError(msg string) {
	c.h.hub.Send(c.sub, game.OutgoingMessage{
		Type: "error",
		Data: gin.H{"message": msg},
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sub.C:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.Int64("userID", c.userID), zap.String("gameID", c.sub.GameID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
