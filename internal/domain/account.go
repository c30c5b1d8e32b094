package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Role represents the authorization level of an account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCustomer:
		return true
	}
	return false
}

func ParseRoleFromString(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
	}
	return r, nil
}

// Account is the identity record a verification runs against. The verifier reads
// it under a row lock and never mutates it.
type Account struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Role           Role
	CredentialHash string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(a.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, a.Email)
	}
	if !a.Role.IsValid() {
		return fmt.Errorf("%w: invalid role %q", ErrValidation, a.Role)
	}
	return nil
}
