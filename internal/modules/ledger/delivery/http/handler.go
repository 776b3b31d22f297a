package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kanau.app/kanaupoints/internal/model"
	"kanau.app/kanaupoints/internal/modules/ledger/dto"
	ledger "kanau.app/kanaupoints/internal/modules/ledger/service"
	commonDto "kanau.app/kanaupoints/pkg/dto"
	"kanau.app/kanaupoints/pkg/response"
	"kanau.app/kanaupoints/pkg/validator"
)

type LedgerHandler struct {
	service ledger.LedgerService
}

func NewLedgerHandler(service ledger.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

func (h *LedgerHandler) GetBalance(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	points, err := h.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: userID, Points: points})
}

func (h *LedgerHandler) Credit(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	summary, err := h.service.AddPoints(c.Request.Context(), userID, req.Amount, req.Reason, req.Category, req.DailyLimited)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: userID, Points: summary.Points})
}

func (h *LedgerHandler) Debit(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.DebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	summary, err := h.service.DebitPoints(c.Request.Context(), userID, req.Amount, req.Reason)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: userID, Points: summary.Points})
}

func (h *LedgerHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter commonDto.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	transactions, err := h.service.GetHistory(c.Request.Context(), userID, filter.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, toHistoryResponse(transactions, filter.Limit))
}

func (h *LedgerHandler) Reconcile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.Reconcile(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func toHistoryResponse(transactions []*model.PointTransaction, limit int) dto.HistoryResponse {
	data := make([]dto.TransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		data = append(data, dto.TransactionResponse{
			ID:           txn.ID,
			Amount:       txn.Amount,
			Reason:       txn.Reason,
			Category:     txn.Category,
			DailyLimited: txn.DailyLimited,
			CreatedAt:    txn.CreatedAt.Format(time.RFC3339),
		})
	}

	return dto.HistoryResponse{
		Data: data,
		Meta: commonDto.PaginationMeta{
			TotalItems: int64(len(data)),
			Limit:      limit,
		},
	}
}
