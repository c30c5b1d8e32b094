package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kursadbilgin/auth-gate/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListParams struct {
	Role     *domain.Role
	Page     int
	PageSize int
}

type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetByEmailForUpdate reads an active account under an exclusive row lock
	// scoped to the surrounding transaction. Concurrent verifications for the
	// same account serialize here.
	GetByEmailForUpdate(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, params ListParams) ([]domain.Account, int64, error)
	UpdateProfile(ctx context.Context, a *domain.Account) error
	Deactivate(ctx context.Context, id string) error
}

type GormAccountRepo struct {
	db *gorm.DB
}

func NewGormAccountRepo(db *gorm.DB) *GormAccountRepo {
	return &GormAccountRepo{db: db}
}

func (r *GormAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	model := accountModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolationError(err) {
			return domain.ErrConflict
		}
		return err
	}
	if a != nil {
		*a = *accountModelToDomain(model)
	}
	return nil
}

func (r *GormAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var model AccountModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return accountModelToDomain(&model), nil
}

func (r *GormAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var model AccountModel
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return accountModelToDomain(&model), nil
}

func (r *GormAccountRepo) GetByEmailForUpdate(ctx context.Context, email string) (*domain.Account, error) {
	var model AccountModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("email = ? AND active", email).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return accountModelToDomain(&model), nil
}

func (r *GormAccountRepo) List(ctx context.Context, params ListParams) ([]domain.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&AccountModel{}).Where("active")

	if params.Role != nil {
		query = query.Where("role = ?", *params.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []AccountModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	accounts := make([]domain.Account, 0, len(models))
	for i := range models {
		accounts = append(accounts, *accountModelToDomain(&models[i]))
	}

	return accounts, total, nil
}

func (r *GormAccountRepo) UpdateProfile(ctx context.Context, a *domain.Account) error {
	if a == nil {
		return domain.ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("id = ? AND active", a.ID).
		Updates(map[string]any{
			"name":       a.Name,
			"phone":      a.Phone,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormAccountRepo) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("id = ? AND active", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
