package bonus

import (
	"context"

	"github.com/google/uuid"

	"kanau.app/kanaupoints/internal/model"
	ledger "kanau.app/kanaupoints/internal/modules/ledger/service"
)

// BonusService grants the fixed daily bonuses the consumer app hands out.
// Amounts come from config; the one-per-day rule is enforced by the ledger.
type BonusService interface {
	ClaimLoginBonus(ctx context.Context, userID uuid.UUID) (*model.PointSummary, error)
	ClaimShareBonus(ctx context.Context, userID uuid.UUID) (*model.PointSummary, error)
}

type bonusService struct {
	ledgerService    ledger.LedgerService
	loginBonusPoints int64
	shareBonusPoints int64
}

func NewBonusService(ledgerService ledger.LedgerService, loginBonusPoints, shareBonusPoints int64) BonusService {
	return &bonusService{
		ledgerService:    ledgerService,
		loginBonusPoints: loginBonusPoints,
		shareBonusPoints: shareBonusPoints,
	}
}

func (s *bonusService) ClaimLoginBonus(ctx context.Context, userID uuid.UUID) (*model.PointSummary, error) {
	return s.ledgerService.AddPoints(ctx, userID, s.loginBonusPoints, "Daily login bonus", model.CategoryLoginBonus, true)
}

func (s *bonusService) ClaimShareBonus(ctx context.Context, userID uuid.UUID) (*model.PointSummary, error) {
	return s.ledgerService.AddPoints(ctx, userID, s.shareBonusPoints, "SNS share bonus", model.CategoryShareReward, true)
}
