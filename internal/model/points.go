package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction categories. Reason is free text; Category is the enumerated
// classification daily limits key on.
const (
	CategoryLoginBonus    = "login_bonus"
	CategorySpecialReward = "special_reward"
	CategoryShareReward   = "share_reward"
	CategoryPurchase      = "purchase"
)

// PointSummary holds the current KP balance of one user. Created lazily on
// first access, never deleted, and only ever mutated together with a
// PointTransaction row inside the same database transaction.
type PointSummary struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Points    int64     `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PointTransaction is one append-only ledger entry. Amount is signed:
// positive for credits, negative for spends.
type PointTransaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index:idx_user_created,priority:1;index:idx_daily_claim,unique,priority:1;not null" json:"user_id"`
	Amount       int64     `gorm:"not null" json:"amount"`
	Reason       string    `gorm:"size:255" json:"reason"`
	Category     string    `gorm:"size:50;index:idx_daily_claim,unique,priority:2;not null" json:"category"`
	DailyLimited bool      `gorm:"not null;default:false" json:"daily_limited"`
	// DayKey is the UTC calendar day ("2006-01-02"), set only on
	// daily-limited rows. NULLs don't collide, so the unique index
	// idx_daily_claim on (user_id, category, day_key) admits at most one
	// daily-limited row per user, category and day while leaving unlimited
	// categories unconstrained. This is the storage-level guard against
	// concurrent double-claims.
	DayKey    *string   `gorm:"size:10;index:idx_daily_claim,unique,priority:3" json:"-"`
	CreatedAt time.Time `gorm:"index:idx_user_created,priority:2" json:"created_at"`
}

func (t *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
