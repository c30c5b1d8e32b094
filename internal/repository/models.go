package repository

import (
	"time"

	"github.com/kursadbilgin/auth-gate/internal/domain"
)

// AccountModel is the persistence model for the accounts table.
type AccountModel struct {
	ID             string      `gorm:"type:uuid;primaryKey"`
	Name           string      `gorm:"type:varchar(255);not null"`
	Email          string      `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone          string      `gorm:"type:varchar(32)"`
	Role           domain.Role `gorm:"type:varchar(20);not null"`
	CredentialHash string      `gorm:"type:varchar(255);not null"`
	Active         bool        `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (AccountModel) TableName() string {
	return "accounts"
}

// LoginAttemptModel is the persistence model for login_attempts.
type LoginAttemptModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	AccountID  string    `gorm:"type:uuid;not null"`
	Succeeded  bool      `gorm:"not null"`
	Locked     bool      `gorm:"not null;default:false"`
	OccurredAt time.Time `gorm:"type:timestamptz;not null"`
}

func (LoginAttemptModel) TableName() string {
	return "login_attempts"
}

func accountModelFromDomain(a *domain.Account) *AccountModel {
	if a == nil {
		return nil
	}

	return &AccountModel{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Phone:          a.Phone,
		Role:           a.Role,
		CredentialHash: a.CredentialHash,
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func accountModelToDomain(m *AccountModel) *domain.Account {
	if m == nil {
		return nil
	}

	return &domain.Account{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		Role:           m.Role,
		CredentialHash: m.CredentialHash,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func attemptModelFromDomain(a *domain.LoginAttempt) *LoginAttemptModel {
	if a == nil {
		return nil
	}

	return &LoginAttemptModel{
		ID:         a.ID,
		AccountID:  a.AccountID,
		Succeeded:  a.Succeeded,
		Locked:     a.Locked,
		OccurredAt: a.OccurredAt,
	}
}

func attemptModelToDomain(m *LoginAttemptModel) *domain.LoginAttempt {
	if m == nil {
		return nil
	}

	return &domain.LoginAttempt{
		ID:         m.ID,
		AccountID:  m.AccountID,
		Succeeded:  m.Succeeded,
		Locked:     m.Locked,
		OccurredAt: m.OccurredAt,
	}
}
