package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kursadbilgin/auth-gate/internal/credential"
	"github.com/kursadbilgin/auth-gate/internal/domain"
	"github.com/kursadbilgin/auth-gate/internal/repository"
	"go.uber.org/zap"
)

const minPasswordLength = 8

// AccountService owns registration and account administration. It never touches
// the verification flow beyond sharing the same store.
type AccountService struct {
	uow    repository.UnitOfWork
	hasher credential.Hasher
	logger *zap.Logger
}

func NewAccountService(uow repository.UnitOfWork, hasher credential.Hasher, logger *zap.Logger) (*AccountService, error) {
	if uow == nil {
		return nil, fmt.Errorf("unit of work is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("credential hasher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AccountService{
		uow:    uow,
		hasher: hasher,
		logger: logger,
	}, nil
}

func (s *AccountService) Register(ctx context.Context, account *domain.Account, password string) (*domain.Account, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account is required", domain.ErrValidation)
	}

	account.Name = strings.TrimSpace(account.Name)
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	account.Phone = strings.TrimSpace(account.Phone)
	if account.Role == "" {
		account.Role = domain.RoleCustomer
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account.ID = uuid.NewString()
	account.CredentialHash = hash
	account.Active = true

	err = s.uow.Do(ctx, func(r repository.Repos) error {
		return r.Accounts.Create(ctx, account)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: email is already registered", domain.ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("accountId", account.ID),
		zap.String("role", account.Role.String()),
	)

	return account, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrValidation)
	}

	var account *domain.Account
	err := s.uow.Do(ctx, func(r repository.Repos) error {
		found, err := r.Accounts.GetByID(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		account = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) List(ctx context.Context, params repository.ListParams) ([]domain.Account, int64, error) {
	var (
		accounts []domain.Account
		total    int64
	)
	err := s.uow.Do(ctx, func(r repository.Repos) error {
		found, count, err := r.Accounts.List(ctx, params)
		if err != nil {
			return err
		}
		accounts = found
		total = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, account *domain.Account) error {
	if account == nil || strings.TrimSpace(account.ID) == "" {
		return fmt.Errorf("%w: account id is required", domain.ErrValidation)
	}
	account.Name = strings.TrimSpace(account.Name)
	account.Phone = strings.TrimSpace(account.Phone)
	if account.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	return s.uow.Do(ctx, func(r repository.Repos) error {
		return r.Accounts.UpdateProfile(ctx, account)
	})
}

func (s *AccountService) Deactivate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: account id is required", domain.ErrValidation)
	}

	return s.uow.Do(ctx, func(r repository.Repos) error {
		return r.Accounts.Deactivate(ctx, strings.TrimSpace(id))
	})
}

// ListAttempts returns the newest attempt rows for an account, for the admin
// login-history view.
func (s *AccountService) ListAttempts(ctx context.Context, accountID string, limit int) ([]domain.LoginAttempt, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrValidation)
	}

	var attempts []domain.LoginAttempt
	err := s.uow.Do(ctx, func(r repository.Repos) error {
		if _, err := r.Accounts.GetByID(ctx, strings.TrimSpace(accountID)); err != nil {
			return err
		}
		found, err := r.Attempts.ListRecent(ctx, strings.TrimSpace(accountID), limit)
		if err != nil {
			return err
		}
		attempts = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
