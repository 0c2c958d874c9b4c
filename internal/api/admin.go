package api

import (
	"errors"
	"net/http"
	"strconv"

	"tonk-service/internal/middleware"
	"tonk-service/internal/service/wallet"
	"tonk-service/internal/service/withdrawal"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type adminLoginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordBody struct {
	Current string `json:"current" binding:"required"`
	Next    string `json:"next" binding:"required,min=6"`
}

type userStatusBody struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type updateTableBody struct {
	Stake int64 `json:"stake" binding:"required,min=1"`
}

type processWithdrawalBody struct {
	Status     string `json:"status" binding:"required,oneof=approved rejected"`
	AdminNotes string `json:"adminNotes"`
}

type setWalletBody struct {
	BalanceAvailable *int64 `json:"balanceAvailable"`
	BalanceFrozen    *int64 `json:"balanceFrozen"`
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var body adminLoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.services.Admin.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrAdminNotFound), errors.Is(err, appErr.ErrInvalidAdminPassword):
			status = http.StatusUnauthorized
		case errors.Is(err, appErr.ErrAdminDisabled):
			status = http.StatusForbidden
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, resp)
}

func (h *Handler) AdminChangePassword(c *gin.Context) {
	adminID := c.GetInt64(middleware.ContextAdminIDKey)
	var body changePasswordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.services.Admin.ChangePassword(c.Request.Context(), adminID, body.Current, body.Next)
	switch {
	case err == nil:
		response.Success(c, gin.H{})
	case errors.Is(err, appErr.ErrInvalidAdminPassword), errors.Is(err, appErr.ErrInvalidPassword):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrAdminNotFound), errors.Is(err, appErr.ErrAdminDisabled):
		response.Error(c, http.StatusForbidden, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) AdminListUsers(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parsePositiveIntQuery(c, "size", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.services.Admin.ListUsers(c.Request.Context(), page, size, c.Query("status"), c.Query("keyword"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, users)
}

func (h *Handler) AdminSetUserStatus(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body userStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.services.Admin.SetUserStatus(c.Request.Context(), userID, body.Status, body.Reason)
	if err != nil {
		status := statusOf(err)
		if errors.Is(err, appErr.ErrInvalidUserStatus) {
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, user)
}

func (h *Handler) AdminSetWallet(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body setWalletBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	w, err := h.services.Wallet.AdminSetWallet(c.Request.Context(), userID, wallet.AdminSetWalletRequest{
		BalanceAvailable: body.BalanceAvailable,
		BalanceFrozen:    body.BalanceFrozen,
	})
	if err != nil {
		status := statusOf(err)
		if errors.Is(err, appErr.ErrInvalidWalletPayload) {
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, w)
}

func (h *Handler) AdminInitTables(c *gin.Context) {
	tables, err := h.services.InitTables(c.Request.Context())
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, gin.H{"tables": tables})
}

func (h *Handler) AdminUpdateTable(c *gin.Context) {
	tableID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body updateTableBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	tbl, err := h.services.Table.Update(c.Request.Context(), tableID, body.Stake)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, tbl)
}

func (h *Handler) AdminPendingWithdrawals(c *gin.Context) {
	list, err := h.services.Withdrawal.Pending(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"withdrawals": list})
}

func (h *Handler) AdminProcessWithdrawal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body processWithdrawalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	w, err := h.services.Withdrawal.Process(c.Request.Context(), id, withdrawal.ProcessRequest{
		Status:  body.Status,
		Notes:   body.AdminNotes,
		AdminID: c.GetInt64(middleware.ContextAdminIDKey),
	})
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Success(c, w)
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
