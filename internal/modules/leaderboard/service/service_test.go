package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kanau.app/kanaupoints/internal/model"
	"kanau.app/kanaupoints/internal/modules/leaderboard/repository"
)

func setup(t *testing.T) (LeaderboardService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.PointSummary{}, &model.PointTransaction{}))
	return NewLeaderboardService(repository.NewLeaderboardRepository(db)), db
}

func seed(t *testing.T, db *gorm.DB, userID uuid.UUID, balance int64, txns ...model.PointTransaction) {
	t.Helper()
	require.NoError(t, db.Create(&model.PointSummary{UserID: userID, Points: balance}).Error)
	for i := range txns {
		txns[i].UserID = userID
		require.NoError(t, db.Create(&txns[i]).Error)
	}
}

func TestAllTimeLeaderboardRanksByBalance(t *testing.T) {
	svc, db := setup(t)
	now := time.Now().UTC()

	first, second, third := uuid.New(), uuid.New(), uuid.New()
	seed(t, db, second, 200, model.PointTransaction{Amount: 200, Category: model.CategorySpecialReward, CreatedAt: now.AddDate(0, 0, -1)})
	seed(t, db, first, 500, model.PointTransaction{Amount: 500, Category: model.CategorySpecialReward, CreatedAt: now.AddDate(0, 0, -10)})
	seed(t, db, third, 100)

	entries, err := svc.GetLeaderboard(context.Background(), 10, "all_time")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Equal(t, first, entries[0].UserID)
	require.Equal(t, int64(500), entries[0].Points)
	require.Equal(t, 1, entries[0].Position)
	// Credit older than a week does not count toward the weekly figure
	require.Equal(t, int64(0), entries[0].WeeklyEarned)

	require.Equal(t, second, entries[1].UserID)
	require.Equal(t, int64(200), entries[1].WeeklyEarned)

	require.Equal(t, third, entries[2].UserID)
	require.Equal(t, 3, entries[2].Position)
}

func TestWeeklyLeaderboardIgnoresDebits(t *testing.T) {
	svc, db := setup(t)
	now := time.Now().UTC()

	spender, earner := uuid.New(), uuid.New()
	seed(t, db, spender, 10,
		model.PointTransaction{Amount: 100, Category: model.CategorySpecialReward, CreatedAt: now.AddDate(0, 0, -2)},
		model.PointTransaction{Amount: -90, Category: model.CategoryPurchase, CreatedAt: now.AddDate(0, 0, -1)},
	)
	seed(t, db, earner, 80,
		model.PointTransaction{Amount: 80, Category: model.CategorySpecialReward, CreatedAt: now.AddDate(0, 0, -3)},
	)

	entries, err := svc.GetLeaderboard(context.Background(), 10, "weekly")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Spending does not reduce the weekly earned score
	require.Equal(t, spender, entries[0].UserID)
	require.Equal(t, int64(100), entries[0].WeeklyEarned)
	require.Equal(t, earner, entries[1].UserID)
	require.Equal(t, int64(80), entries[1].WeeklyEarned)
}
