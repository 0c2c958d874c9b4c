package api

import (
	"errors"
	"net/http"
	"strconv"

	"tonk-service/internal/middleware"
	"tonk-service/internal/service"
	"tonk-service/internal/service/game"
	usersvc "tonk-service/internal/service/user"
	"tonk-service/internal/tonk"
	"tonk-service/internal/ws"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Game, services.Hub)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/api")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
		}

		userGroup := v1.Group("/user")
		userGroup.Use(middleware.AuthRequired())
		{
			userGroup.GET("/profile", handler.GetProfile)
			userGroup.PUT("/profile", handler.UpdateProfile)
		}

		v1.GET("/wallet", middleware.AuthRequired(), handler.GetWallet)

		tableGroup := v1.Group("/tables")
		{
			tableGroup.GET("", handler.ListTables)
			tableGroup.GET("/player-count", handler.PlayerCount)
			tableGroup.GET("/:id", handler.GetTable)
			tableGroup.GET("/:id/games", handler.ListTableGames)
		}

		withdrawalGroup := v1.Group("/withdrawals")
		withdrawalGroup.Use(middleware.AuthRequired())
		{
			withdrawalGroup.POST("", handler.SubmitWithdrawal)
			withdrawalGroup.GET("", handler.ListWithdrawals)
		}

		gameGroup := v1.Group("/games")
		{
			gameGroup.GET("", handler.ListGames)
			gameGroup.GET("/:id", middleware.OptionalAuth(), handler.GetGame)

			protected := gameGroup.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", handler.CreateGame)
				protected.POST("/:id/join", handler.JoinGame)
				protected.POST("/:id/action", handler.GameAction)
			}
		}
	}

	r.GET("/ws/games/:id", middleware.OptionalAuth(), wsHandler.HandleGameWS)
	r.GET("/ws/lobby", wsHandler.HandleLobbyWS)

	adminGroup := r.Group("/admin")
	{
		adminGroup.POST("/auth/login", handler.AdminLogin)

		protected := adminGroup.Group("")
		protected.Use(middleware.AdminAuthRequired())
		{
			protected.POST("/auth/password", handler.AdminChangePassword)
			protected.GET("/users", handler.AdminListUsers)
			protected.POST("/users/:id/status", handler.AdminSetUserStatus)
			protected.PUT("/users/:id/wallet", handler.AdminSetWallet)
			protected.POST("/tables/initialize", handler.AdminInitTables)
			protected.PUT("/tables/:id", handler.AdminUpdateTable)
			protected.GET("/withdrawals/pending", handler.AdminPendingWithdrawals)
			protected.PUT("/withdrawals/:id", handler.AdminProcessWithdrawal)
		}
	}
}

type credentialsBody struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileBody struct {
	Nickname *string `json:"nickname" binding:"omitempty,max=32"`
	Avatar   *string `json:"avatar" binding:"omitempty,url"`
}

type createGameBody struct {
	Stake int64 `json:"stake" binding:"required,min=1"`
}

type actionBody struct {
	Type        string `json:"type" binding:"required,oneof=draw discard drop"`
	CardID      string `json:"cardId" binding:"required_if=Type discard"`
	FromDiscard bool   `json:"fromDiscard"`
}

func (b actionBody) toAction() tonk.Action {
	return tonk.Action{
		Kind:        tonk.ActionKind(b.Type),
		CardID:      b.CardID,
		FromDiscard: b.FromDiscard,
	}
}

func (h *Handler) Register(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.services.Auth.Register(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrInvalidUsername), errors.Is(err, appErr.ErrInvalidPassword):
			status = http.StatusBadRequest
		case errors.Is(err, appErr.ErrUsernameTaken):
			status = http.StatusConflict
		}
		response.Error(c, status, err.Error())
		return
	}

	response.Created(c, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.services.Auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrInvalidCredentials):
			status = http.StatusUnauthorized
		case errors.Is(err, appErr.ErrUnauthorized):
			status = http.StatusForbidden
		}
		response.Error(c, status, err.Error())
		return
	}

	response.Success(c, resp)
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	profile, err := h.services.User.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body updateProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.services.User.UpdateProfile(c.Request.Context(), userID, usersvc.UpdateProfileRequest{
		Nickname: body.Nickname,
		Avatar:   body.Avatar,
	})
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, updated)
}

func (h *Handler) GetWallet(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.services.Wallet.GetWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	logs, err := h.services.Wallet.Logs(c.Request.Context(), userID, 20)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"wallet": wallet, "logs": logs})
}

func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.services.Table.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"tables": tables})
}

func (h *Handler) GetTable(c *gin.Context) {
	tableID, ok := parseIDParam(c)
	if !ok {
		return
	}
	tbl, err := h.services.Table.Get(c.Request.Context(), tableID)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, tbl)
}

func (h *Handler) ListTableGames(c *gin.Context) {
	tableID, ok := parseIDParam(c)
	if !ok {
		return
	}
	limit, err := parsePositiveIntQuery(c, "limit", 50)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	games, err := h.services.Game.ListByTable(c.Request.Context(), tableID, limit)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, gin.H{"games": games})
}

func (h *Handler) PlayerCount(c *gin.Context) {
	count, err := h.services.Game.PlayerCount(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"count": count})
}

func (h *Handler) ListGames(c *gin.Context) {
	limit, err := parsePositiveIntQuery(c, "limit", 50)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	games, err := h.services.Game.ListActive(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"games": games})
}

func (h *Handler) CreateGame(c *gin.Context) {
	var body createGameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	who, ok := h.identity(c)
	if !ok {
		return
	}

	view, err := h.services.Game.Create(c.Request.Context(), who, body.Stake)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Created(c, view)
}

func (h *Handler) GetGame(c *gin.Context) {
	userID, _ := getUserID(c)
	view, err := h.services.Game.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, view)
}

func (h *Handler) JoinGame(c *gin.Context) {
	who, ok := h.identity(c)
	if !ok {
		return
	}
	view, err := h.services.Game.Join(c.Request.Context(), c.Param("id"), who)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, view)
}

func (h *Handler) GameAction(c *gin.Context) {
	var body actionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.services.Game.Act(c.Request.Context(), c.Param("id"), game.Identity{UserID: userID}, body.toAction())
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, view)
}

// identity resolves the caller's seat identity from the profile, writing the
// error response itself when that fails.
func (h *Handler) identity(c *gin.Context) (game.Identity, bool) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return game.Identity{}, false
	}
	profile, err := h.services.User.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return game.Identity{}, false
	}
	name := profile.Nickname
	if name == "" {
		name = profile.Username
	}
	return game.Identity{UserID: userID, Name: name, Avatar: profile.Avatar}, true
}

// statusOf maps service and engine errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, appErr.ErrGameNotFound),
		errors.Is(err, appErr.ErrUserNotFound),
		errors.Is(err, appErr.ErrTableNotFound),
		errors.Is(err, appErr.ErrWithdrawalNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErr.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, appErr.ErrGameConflict),
		errors.Is(err, appErr.ErrGameBusy),
		errors.Is(err, appErr.ErrTableBusy),
		errors.Is(err, appErr.ErrStakeExists),
		errors.Is(err, appErr.ErrWithdrawalProcessed):
		return http.StatusConflict
	case errors.Is(err, appErr.ErrStakeNotOffered),
		errors.Is(err, appErr.ErrInvalidAmount),
		errors.Is(err, appErr.ErrInvalidCashAppTag),
		errors.Is(err, appErr.ErrInvalidWithdrawalStatus),
		errors.Is(err, tonk.ErrInvalidStake),
		errors.Is(err, tonk.ErrInvalidIdentity),
		errors.Is(err, tonk.ErrUnknownAction),
		errors.Is(err, tonk.ErrCardIDRequired):
		return http.StatusBadRequest
	case errors.Is(err, tonk.ErrNotSeated):
		return http.StatusForbidden
	case errors.Is(err, tonk.ErrDropNotAllowed):
		return http.StatusConflict
	case tonk.IsFault(err):
		return http.StatusInternalServerError
	case errors.Is(err, tonk.ErrGameNotInProgress),
		errors.Is(err, tonk.ErrNotYourTurn),
		errors.Is(err, tonk.ErrAlreadyDropped),
		errors.Is(err, tonk.ErrAlreadyDrawn),
		errors.Is(err, tonk.ErrMustDrawFirst),
		errors.Is(err, tonk.ErrMustDiscardFirst),
		errors.Is(err, tonk.ErrAlreadySeated),
		errors.Is(err, tonk.ErrNoBotSeat):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func parsePositiveIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return parsed, nil
}

func getUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
