package dto

type PaginationMeta struct {
	TotalItems int64 `json:"total_items"`
	Limit      int   `json:"limit"`
}

type HistoryFilter struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type LeaderboardFilter struct {
	Timeframe string `form:"timeframe" binding:"omitempty,oneof=all_time weekly"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=50"`
}
