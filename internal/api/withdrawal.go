package api

import (
	"net/http"

	"tonk-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type withdrawalBody struct {
	Amount     int64  `json:"amount" binding:"required,min=1"`
	CashAppTag string `json:"cashAppTag" binding:"required"`
}

func (h *Handler) SubmitWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body withdrawalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	w, err := h.services.Withdrawal.Submit(c.Request.Context(), userID, body.Amount, body.CashAppTag)
	if err != nil {
		response.Error(c, statusOf(err), err.Error())
		return
	}
	response.Created(c, w)
}

func (h *Handler) ListWithdrawals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.services.Withdrawal.History(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"withdrawals": list})
}
