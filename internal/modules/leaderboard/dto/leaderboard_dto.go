package dto

import "github.com/google/uuid"

// LeaderboardEntry is a single user entry in the points leaderboard.
// Position is the ranking (1-based).
type LeaderboardEntry struct {
	UserID       uuid.UUID `json:"user_id"`
	Position     int       `json:"position"`
	Points       int64     `json:"points"`
	WeeklyEarned int64     `json:"weekly_earned"`
}
