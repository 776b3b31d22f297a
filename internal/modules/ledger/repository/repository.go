package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kanau.app/kanaupoints/internal/model"
	"kanau.app/kanaupoints/pkg/apperror"
)

type LedgerRepository interface {
	EnsureSummary(ctx context.Context, userID uuid.UUID) error
	FindSummary(ctx context.Context, userID uuid.UUID) (*model.PointSummary, error)
	Credit(ctx context.Context, txn *model.PointTransaction, dayStart, dayEnd time.Time) (*model.PointSummary, error)
	HasDailyClaim(ctx context.Context, userID uuid.UUID, category string, dayStart, dayEnd time.Time) (bool, error)
	Debit(ctx context.Context, txn *model.PointTransaction) (*model.PointSummary, error)
	FindTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PointTransaction, error)
	SumAmounts(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAllUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// EnsureSummary creates the zero-balance summary row if it does not exist.
// ON CONFLICT DO NOTHING keeps it idempotent under concurrent first access.
func (r *ledgerRepository) EnsureSummary(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.PointSummary{UserID: userID}).Error
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func (r *ledgerRepository) FindSummary(ctx context.Context, userID uuid.UUID) (*model.PointSummary, error) {
	var summary model.PointSummary
	if err := r.db.WithContext(ctx).First(&summary, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &summary, nil
}

// Credit inserts the ledger row and increments the balance inside one
// database transaction, so either both writes land or neither does.
//
// For daily-limited transactions the count check inside the transaction is
// the friendly error path; the unique index on (user_id, category, day_key)
// is what actually stops two concurrent claims from both committing. The
// loser's insert fails and is reported as ErrAlreadyClaimed.
func (r *ledgerRepository) Credit(ctx context.Context, txn *model.PointTransaction, dayStart, dayEnd time.Time) (*model.PointSummary, error) {
	var summary model.PointSummary

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSummary(tx, txn.UserID); err != nil {
			return storageErr(err)
		}

		if txn.DailyLimited {
			claimed, err := hasDailyClaim(tx, txn.UserID, txn.Category, dayStart, dayEnd)
			if err != nil {
				return err
			}
			if claimed {
				return apperror.ErrAlreadyClaimed
			}
		}

		if err := tx.Create(txn).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.ErrAlreadyClaimed
			}
			return storageErr(err)
		}

		err := tx.Model(&model.PointSummary{}).
			Where("user_id = ?", txn.UserID).
			Updates(map[string]interface{}{
				"points":     gorm.Expr("points + ?", txn.Amount),
				"updated_at": txn.CreatedAt,
			}).Error
		if err != nil {
			return storageErr(err)
		}

		if err := tx.First(&summary, "user_id = ?", txn.UserID).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Debit decrements the balance with a compare-and-set update: the WHERE
// clause guards points >= amount, so a concurrent debit can never drive the
// balance negative. Zero rows affected means insufficient balance.
func (r *ledgerRepository) Debit(ctx context.Context, txn *model.PointTransaction) (*model.PointSummary, error) {
	var summary model.PointSummary
	amount := -txn.Amount // txn.Amount is negative for spends

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSummary(tx, txn.UserID); err != nil {
			return storageErr(err)
		}

		res := tx.Model(&model.PointSummary{}).
			Where("user_id = ? AND points >= ?", txn.UserID, amount).
			Updates(map[string]interface{}{
				"points":     gorm.Expr("points - ?", amount),
				"updated_at": txn.CreatedAt,
			})
		if res.Error != nil {
			return storageErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.ErrInsufficientBalance
		}

		if err := tx.Create(txn).Error; err != nil {
			return storageErr(err)
		}

		if err := tx.First(&summary, "user_id = ?", txn.UserID).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// HasDailyClaim reports whether a daily-limited transaction for the pair
// already exists inside the day window.
func (r *ledgerRepository) HasDailyClaim(ctx context.Context, userID uuid.UUID, category string, dayStart, dayEnd time.Time) (bool, error) {
	return hasDailyClaim(r.db.WithContext(ctx), userID, category, dayStart, dayEnd)
}

func hasDailyClaim(tx *gorm.DB, userID uuid.UUID, category string, dayStart, dayEnd time.Time) (bool, error) {
	var count int64
	err := tx.Model(&model.PointTransaction{}).
		Where("user_id = ? AND category = ? AND created_at >= ? AND created_at < ?",
			userID, category, dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, storageErr(err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) FindTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PointTransaction, error) {
	var transactions []*model.PointTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return transactions, nil
}

func (r *ledgerRepository) SumAmounts(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.PointTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return 0, storageErr(err)
	}
	return sum, nil
}

func (r *ledgerRepository) FindAllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.PointSummary{}).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return ids, nil
}

func ensureSummary(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.PointSummary{UserID: userID}).Error
}

// isUniqueViolation matches the postgres and sqlite duplicate-key errors.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// storageErr classifies an unexpected store failure as transient so callers
// can tell it apart from business outcomes. The original cause is kept in
// the chain for logging.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
}
