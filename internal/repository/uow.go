package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos bundles the repositories bound to one transaction.
type Repos struct {
	Accounts AccountRepository
	Attempts AttemptRepository
}

// UnitOfWork runs fn inside a single transaction: commit when fn returns nil,
// rollback on error or panic. Row locks taken inside fn are released with the
// transaction on every exit path.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repos) error) error
}

type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(r Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos{
			Accounts: NewGormAccountRepo(tx),
			Attempts: NewGormAttemptRepo(tx),
		})
	})
}
