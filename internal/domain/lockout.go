package domain

import (
	"fmt"
	"time"
)

// Default lockout policy values.
const (
	DefaultMaxAttempts   = 5
	DefaultAttemptWindow = 15 * time.Minute
	DefaultLockoutWindow = 15 * time.Minute
	DefaultRetention     = 24 * time.Hour
)

// Policy holds the brute-force protection constants applied by the verifier.
type Policy struct {
	// MaxAttempts is the failure count at which an account locks.
	MaxAttempts int
	// AttemptWindow is the rolling span over which failures are counted.
	AttemptWindow time.Duration
	// LockoutWindow is how long an account stays locked.
	LockoutWindow time.Duration
	// Retention is how long attempt rows are kept; older rows are pruned after
	// a successful verification.
	Retention time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   DefaultMaxAttempts,
		AttemptWindow: DefaultAttemptWindow,
		LockoutWindow: DefaultLockoutWindow,
		Retention:     DefaultRetention,
	}
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be >= 1", ErrValidation)
	}
	if p.AttemptWindow <= 0 {
		return fmt.Errorf("%w: attempt window must be positive", ErrValidation)
	}
	if p.LockoutWindow <= 0 {
		return fmt.Errorf("%w: lockout window must be positive", ErrValidation)
	}
	if p.Retention <= 0 {
		return fmt.Errorf("%w: retention must be positive", ErrValidation)
	}
	return nil
}

// WillLockNow decides whether the attempt about to be recorded triggers a
// lockout, given the failure count observed before this attempt. The canonical
// rule is failuresBefore+1 >= maxAttempts: the attempt that would become the
// maxAttempts-th failure locks the account without evaluating the credential.
func WillLockNow(failuresBefore, maxAttempts int) bool {
	return failuresBefore+1 >= maxAttempts
}

// RemainingLockout returns how much of the lockout window is left for a marker
// created at lockedAt, clamped at zero.
func RemainingLockout(lockedAt time.Time, window time.Duration, now time.Time) time.Duration {
	remaining := window - now.Sub(lockedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingMinutes is the ceiling of RemainingLockout in minutes, the value
// reported to a locked-out caller.
func RemainingMinutes(lockedAt time.Time, window time.Duration, now time.Time) int {
	remaining := RemainingLockout(lockedAt, window, now)
	if remaining == 0 {
		return 0
	}
	return int((remaining + time.Minute - 1) / time.Minute)
}
