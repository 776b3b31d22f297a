package leaderboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"kanau.app/kanaupoints/internal/modules/leaderboard/dto"
	"kanau.app/kanaupoints/internal/modules/leaderboard/repository"
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]dto.LeaderboardEntry, error)
}

type leaderboardService struct {
	repo repository.LeaderboardRepository
	now  func() time.Time
}

func NewLeaderboardService(repo repository.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo, now: time.Now}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]dto.LeaderboardEntry, error) {
	weeklyStart := s.now().UTC().AddDate(0, 0, -7)

	if timeframe == "weekly" {
		rows, err := s.repo.TopByEarnedSince(ctx, weeklyStart, limit)
		if err != nil {
			return nil, err
		}

		entries := make([]dto.LeaderboardEntry, 0, len(rows))
		for i, row := range rows {
			entries = append(entries, dto.LeaderboardEntry{
				UserID:       row.UserID,
				Position:     i + 1,
				Points:       row.Score,
				WeeklyEarned: row.Score,
			})
		}
		return entries, nil
	}

	// all_time: rank by current balance, annotate with weekly earnings
	summaries, err := s.repo.TopByBalance(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(summaries))
	if len(summaries) == 0 {
		return entries, nil
	}

	userIDs := make([]uuid.UUID, 0, len(summaries))
	for _, summary := range summaries {
		userIDs = append(userIDs, summary.UserID)
	}

	weekly, err := s.repo.EarnedSinceByUsers(ctx, userIDs, weeklyStart)
	if err != nil {
		return nil, err
	}

	for i, summary := range summaries {
		entries = append(entries, dto.LeaderboardEntry{
			UserID:       summary.UserID,
			Position:     i + 1,
			Points:       summary.Points,
			WeeklyEarned: weekly[summary.UserID],
		})
	}

	return entries, nil
}
