package dto

import (
	"github.com/google/uuid"

	commonDto "kanau.app/kanaupoints/pkg/dto"
)

type CreditRequest struct {
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	Reason       string `json:"reason" binding:"required,max=255"`
	Category     string `json:"category" binding:"required,oneof=login_bonus special_reward share_reward purchase"`
	DailyLimited bool   `json:"daily_limited"`
}

type DebitRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required,max=255"`
}

type BalanceResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Points int64     `json:"points"`
}

type TransactionResponse struct {
	ID           uuid.UUID `json:"id"`
	Amount       int64     `json:"amount"`
	Reason       string    `json:"reason"`
	Category     string    `json:"category"`
	DailyLimited bool      `json:"daily_limited"`
	CreatedAt    string    `json:"created_at"`
}

type HistoryResponse struct {
	Data []TransactionResponse    `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

// ReconcileResponse reports whether the summary balance matches the sum of
// the user's ledger entries.
type ReconcileResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	Points     int64     `json:"points"`
	LedgerSum  int64     `json:"ledger_sum"`
	Consistent bool      `json:"consistent"`
}
