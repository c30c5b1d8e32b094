package domain

import "time"

// LoginAttempt records a single verification attempt for an account. Rows are
// append-only; the only permitted update is clearing Locked once the lockout
// window has elapsed.
type LoginAttempt struct {
	ID        string
	AccountID string
	Succeeded bool
	// Locked is true only on the row that triggered a lockout. At most one
	// active marker (Locked with OccurredAt inside the lockout window) may
	// exist per account at any instant.
	Locked     bool
	OccurredAt time.Time
}
