package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kursadbilgin/auth-gate/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptRepository is the durable ledger of verification attempts. All
// lockout-relevant reads run inside the caller's transaction while the account
// row is held under an exclusive lock, so counts and marker lookups cannot race
// with a concurrent verification of the same account.
type AttemptRepository interface {
	// ClearExpiredLocks drops the lock marker from rows that fell out of the
	// lockout window (occurred before cutoff).
	ClearExpiredLocks(ctx context.Context, accountID string, cutoff time.Time) error
	// FindActiveLock returns the newest lock marker inside the lockout window
	// (occurred at or after cutoff), or nil when the account is not locked.
	FindActiveLock(ctx context.Context, accountID string, cutoff time.Time) (*domain.LoginAttempt, error)
	// CountRecentFailures counts failed attempts at or after cutoff.
	CountRecentFailures(ctx context.Context, accountID string, cutoff time.Time) (int, error)
	Create(ctx context.Context, a *domain.LoginAttempt) error
	// PruneOlderThan deletes this account's rows older than cutoff. Pruning is
	// always scoped to one account, never bulk.
	PruneOlderThan(ctx context.Context, accountID string, cutoff time.Time) error
	ListRecent(ctx context.Context, accountID string, limit int) ([]domain.LoginAttempt, error)
}

type GormAttemptRepo struct {
	db *gorm.DB
}

func NewGormAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{db: db}
}

func (r *GormAttemptRepo) ClearExpiredLocks(ctx context.Context, accountID string, cutoff time.Time) error {
	return r.db.WithContext(ctx).
		Model(&LoginAttemptModel{}).
		Where("account_id = ? AND locked AND occurred_at < ?", accountID, cutoff).
		Update("locked", false).Error
}

func (r *GormAttemptRepo) FindActiveLock(ctx context.Context, accountID string, cutoff time.Time) (*domain.LoginAttempt, error) {
	var model LoginAttemptModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ? AND locked AND occurred_at >= ?", accountID, cutoff).
		Order("occurred_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return attemptModelToDomain(&model), nil
}

func (r *GormAttemptRepo) CountRecentFailures(ctx context.Context, accountID string, cutoff time.Time) (int, error) {
	// No FOR UPDATE here: Postgres rejects row locking on aggregates. The
	// account row lock taken by the verifier keeps this count stable.
	var total int64
	err := r.db.WithContext(ctx).
		Model(&LoginAttemptModel{}).
		Where("account_id = ? AND NOT succeeded AND occurred_at >= ?", accountID, cutoff).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *GormAttemptRepo) Create(ctx context.Context, a *domain.LoginAttempt) error {
	model := attemptModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if a != nil {
		*a = *attemptModelToDomain(model)
	}
	return nil
}

func (r *GormAttemptRepo) PruneOlderThan(ctx context.Context, accountID string, cutoff time.Time) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND occurred_at < ?", accountID, cutoff).
		Delete(&LoginAttemptModel{}).Error
}

func (r *GormAttemptRepo) ListRecent(ctx context.Context, accountID string, limit int) ([]domain.LoginAttempt, error) {
	if limit < 1 {
		limit = 50
	}

	var models []LoginAttemptModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.LoginAttempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *attemptModelToDomain(&models[i]))
	}

	return attempts, nil
}
