package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness or state conflict.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredential is the enumeration-safe rejection for both an unknown
	// email and a wrong password. The message must stay identical for both cases.
	ErrInvalidCredential = errors.New("invalid email or password")
	// ErrLockedOut marks an account that is temporarily locked.
	ErrLockedOut = errors.New("account temporarily locked")
)

// InvalidCredentialError rejects a credential check, optionally carrying the
// number of attempts left before the account locks.
type InvalidCredentialError struct {
	RemainingAttempts int
}

func (e *InvalidCredentialError) Error() string {
	if e != nil && e.RemainingAttempts > 0 {
		return fmt.Sprintf("%s, %d attempt(s) remaining", ErrInvalidCredential.Error(), e.RemainingAttempts)
	}
	return ErrInvalidCredential.Error()
}

func (e *InvalidCredentialError) Is(target error) bool {
	return target == ErrInvalidCredential
}

// LockoutError rejects a verification against a locked account.
type LockoutError struct {
	RetryAfterMinutes int
}

func (e *LockoutError) Error() string {
	minutes := 0
	if e != nil {
		minutes = e.RetryAfterMinutes
	}
	return fmt.Sprintf("locked, retry in %d minute(s)", minutes)
}

func (e *LockoutError) Is(target error) bool {
	return target == ErrLockedOut
}
