package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"kanau.app/kanaupoints/internal/model"
	"kanau.app/kanaupoints/internal/modules/ledger/dto"
	"kanau.app/kanaupoints/internal/modules/ledger/repository"
	"kanau.app/kanaupoints/pkg/apperror"
)

// The daily-limit window is pinned to the UTC calendar day. Deployments
// wanting a different reset boundary shift the injected clock, not the
// window computation.

type LedgerService interface {
	GetOrCreateSummary(ctx context.Context, userID uuid.UUID) (*model.PointSummary, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	AddPoints(ctx context.Context, userID uuid.UUID, amount int64, reason, category string, dailyLimited bool) (*model.PointSummary, error)
	DebitPoints(ctx context.Context, userID uuid.UUID, amount int64, reason string) (*model.PointSummary, error)
	GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PointTransaction, error)
	Reconcile(ctx context.Context, userID uuid.UUID) (*dto.ReconcileResponse, error)
	ReconcileAll(ctx context.Context) (int, error)
}

type ledgerService struct {
	repo            repository.LedgerRepository
	redisClient     *redis.Client
	balanceCacheTTL time.Duration
	sanitizer       *bluemonday.Policy
	now             func() time.Time
}

func NewLedgerService(repo repository.LedgerRepository, redisClient *redis.Client, balanceCacheTTL time.Duration) LedgerService {
	return NewLedgerServiceWithClock(repo, redisClient, balanceCacheTTL, time.Now)
}

// NewLedgerServiceWithClock lets tests pin the day window.
func NewLedgerServiceWithClock(repo repository.LedgerRepository, redisClient *redis.Client, balanceCacheTTL time.Duration, now func() time.Time) LedgerService {
	return &ledgerService{
		repo:            repo,
		redisClient:     redisClient,
		balanceCacheTTL: balanceCacheTTL,
		sanitizer:       bluemonday.StrictPolicy(),
		now:             now,
	}
}

func (s *ledgerService) GetOrCreateSummary(ctx context.Context, userID uuid.UUID) (*model.PointSummary, error) {
	if err := s.repo.EnsureSummary(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.FindSummary(ctx, userID)
}

// GetBalance serves reads through the advisory redis cache. The database
// stays authoritative: a cache miss or a redis failure falls through to the
// store, and every credit/debit drops the cached value.
func (s *ledgerService) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.redisClient != nil {
		val, err := s.redisClient.Get(ctx, balanceKey(userID)).Result()
		if err == nil {
			if points, perr := strconv.ParseInt(val, 10, 64); perr == nil {
				return points, nil
			}
		}
	}

	summary, err := s.GetOrCreateSummary(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Set(ctx, balanceKey(userID), summary.Points, s.balanceCacheTTL).Err(); err != nil {
			log.WithError(err).Warn("failed to cache balance")
		}
	}

	return summary.Points, nil
}

func (s *ledgerService) AddPoints(ctx context.Context, userID uuid.UUID, amount int64, reason, category string, dailyLimited bool) (*model.PointSummary, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	txn := &model.PointTransaction{
		UserID:       userID,
		Amount:       amount,
		Reason:       s.sanitizer.Sanitize(reason),
		Category:     category,
		DailyLimited: dailyLimited,
		CreatedAt:    now,
	}

	if dailyLimited {
		key := now.Format("2006-01-02")
		txn.DayKey = &key

		// The claim marker is a hint, never the truth: a hit saves opening a
		// write transaction, but the verdict still comes from the store. A
		// stale marker (crash between commit paths, lost Del) is dropped so
		// it can never lock a user out of a legitimate claim.
		if s.redisClient != nil {
			redisKey := claimKey(userID, category, key)
			exists, err := s.redisClient.Exists(ctx, redisKey).Result()
			if err == nil && exists > 0 {
				claimed, derr := s.repo.HasDailyClaim(ctx, userID, category, dayStart, dayEnd)
				if derr == nil && claimed {
					return nil, apperror.ErrAlreadyClaimed
				}
				if derr == nil {
					s.redisClient.Del(ctx, redisKey)
				}
			}
		}
	}

	summary, err := s.repo.Credit(ctx, txn, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	// Mark the claim only after the commit, so a crash mid-credit can never
	// strand a marker without a ledger row behind it.
	if dailyLimited && s.redisClient != nil {
		if err := s.redisClient.Set(ctx, claimKey(userID, category, *txn.DayKey), "claimed", dayEnd.Sub(now)).Err(); err != nil {
			log.WithError(err).Warn("failed to set claim marker")
		}
	}

	s.invalidateBalance(ctx, userID)

	log.WithFields(log.Fields{
		"user_id":  userID,
		"amount":   amount,
		"category": category,
	}).Info("points credited")

	return summary, nil
}

func (s *ledgerService) DebitPoints(ctx context.Context, userID uuid.UUID, amount int64, reason string) (*model.PointSummary, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount
	}

	txn := &model.PointTransaction{
		UserID:    userID,
		Amount:    -amount,
		Reason:    s.sanitizer.Sanitize(reason),
		Category:  model.CategoryPurchase,
		CreatedAt: s.now().UTC(),
	}

	summary, err := s.repo.Debit(ctx, txn)
	if err != nil {
		return nil, err
	}

	s.invalidateBalance(ctx, userID)

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
	}).Info("points debited")

	return summary, nil
}

func (s *ledgerService) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PointTransaction, error) {
	if limit < 1 {
		limit = 20
	}
	return s.repo.FindTransactions(ctx, userID, limit)
}

// Reconcile verifies that the summary balance equals the sum of the user's
// ledger entries. A mismatch is a data-integrity fault: it is reported, never
// silently repaired.
func (s *ledgerService) Reconcile(ctx context.Context, userID uuid.UUID) (*dto.ReconcileResponse, error) {
	summary, err := s.repo.FindSummary(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum, err := s.repo.SumAmounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &dto.ReconcileResponse{
		UserID:     userID,
		Points:     summary.Points,
		LedgerSum:  sum,
		Consistent: summary.Points == sum,
	}

	if !result.Consistent {
		log.WithFields(log.Fields{
			"user_id":    userID,
			"points":     summary.Points,
			"ledger_sum": sum,
			"drift":      summary.Points - sum,
		}).Error("balance does not match ledger sum")
	}

	return result, nil
}

// ReconcileAll sweeps every known summary and returns the number of
// inconsistent users found.
func (s *ledgerService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.repo.FindAllUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	mismatches := 0
	for _, id := range ids {
		result, err := s.Reconcile(ctx, id)
		if err != nil {
			log.WithError(err).WithField("user_id", id).Warn("reconcile failed")
			continue
		}
		if !result.Consistent {
			mismatches++
		}
	}

	return mismatches, nil
}

func (s *ledgerService) invalidateBalance(ctx context.Context, userID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, balanceKey(userID)).Err(); err != nil {
		log.WithError(err).Warn("failed to invalidate balance cache")
	}
}

func balanceKey(userID uuid.UUID) string {
	return fmt.Sprintf("kp:balance:%s", userID.String())
}

func claimKey(userID uuid.UUID, category, day string) string {
	return fmt.Sprintf("kp:claim:%s:%s:%s", userID.String(), category, day)
}
