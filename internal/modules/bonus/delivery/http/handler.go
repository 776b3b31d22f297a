package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bonus "kanau.app/kanaupoints/internal/modules/bonus/service"
	ledgerDto "kanau.app/kanaupoints/internal/modules/ledger/dto"
	"kanau.app/kanaupoints/pkg/response"
)

type BonusHandler struct {
	service bonus.BonusService
}

func NewBonusHandler(service bonus.BonusService) *BonusHandler {
	return &BonusHandler{service: service}
}

func (h *BonusHandler) ClaimLoginBonus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	summary, err := h.service.ClaimLoginBonus(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledgerDto.BalanceResponse{UserID: userID, Points: summary.Points})
}

func (h *BonusHandler) ClaimShareBonus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	summary, err := h.service.ClaimShareBonus(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledgerDto.BalanceResponse{UserID: userID, Points: summary.Points})
}
