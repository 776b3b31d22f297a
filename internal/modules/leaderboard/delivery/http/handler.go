package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	leaderboard "kanau.app/kanaupoints/internal/modules/leaderboard/service"
	commonDto "kanau.app/kanaupoints/pkg/dto"
	"kanau.app/kanaupoints/pkg/response"
	"kanau.app/kanaupoints/pkg/validator"
)

type LeaderboardHandler struct {
	service leaderboard.LeaderboardService
}

func NewLeaderboardHandler(service leaderboard.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var filter commonDto.LeaderboardFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if filter.Limit < 1 {
		filter.Limit = 10
	}

	entries, err := h.service.GetLeaderboard(c.Request.Context(), filter.Limit, filter.Timeframe)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
