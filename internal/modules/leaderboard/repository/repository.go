package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kanau.app/kanaupoints/internal/model"
	"kanau.app/kanaupoints/pkg/apperror"
)

type ScoreRow struct {
	UserID uuid.UUID
	Score  int64
}

type LeaderboardRepository interface {
	TopByBalance(ctx context.Context, limit int) ([]model.PointSummary, error)
	TopByEarnedSince(ctx context.Context, since time.Time, limit int) ([]ScoreRow, error)
	EarnedSinceByUsers(ctx context.Context, userIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int64, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) TopByBalance(ctx context.Context, limit int) ([]model.PointSummary, error) {
	var summaries []model.PointSummary
	err := r.db.WithContext(ctx).
		Order("points DESC").
		Limit(limit).
		Find(&summaries).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return summaries, nil
}

// TopByEarnedSince ranks users by positive ledger amounts in the trailing
// window. Debits are excluded so spending KP does not hurt the ranking.
func (r *leaderboardRepository) TopByEarnedSince(ctx context.Context, since time.Time, limit int) ([]ScoreRow, error) {
	var rows []ScoreRow
	err := r.db.WithContext(ctx).Model(&model.PointTransaction{}).
		Select("user_id, SUM(amount) as score").
		Where("amount > 0 AND created_at >= ?", since).
		Group("user_id").
		Order("score DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return rows, nil
}

func (r *leaderboardRepository) EarnedSinceByUsers(ctx context.Context, userIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int64, error) {
	var rows []ScoreRow
	err := r.db.WithContext(ctx).Model(&model.PointTransaction{}).
		Select("user_id, SUM(amount) as score").
		Where("user_id IN ? AND amount > 0 AND created_at >= ?", userIDs, since).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}

	scores := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		scores[row.UserID] = row.Score
	}
	return scores, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
}
