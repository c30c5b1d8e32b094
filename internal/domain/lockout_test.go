package domain

import (
	"errors"
	"testing"
	"time"
)

func TestWillLockNow(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		failuresBefore int
		maxAttempts    int
		want           bool
	}{
		{name: "no failures", failuresBefore: 0, maxAttempts: 5, want: false},
		{name: "one below threshold", failuresBefore: 3, maxAttempts: 5, want: false},
		{name: "at threshold", failuresBefore: 4, maxAttempts: 5, want: true},
		{name: "above threshold", failuresBefore: 7, maxAttempts: 5, want: true},
		{name: "single attempt policy", failuresBefore: 0, maxAttempts: 1, want: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := WillLockNow(tc.failuresBefore, tc.maxAttempts); got != tc.want {
				t.Fatalf("WillLockNow(%d, %d) = %v, want %v", tc.failuresBefore, tc.maxAttempts, got, tc.want)
			}
		})
	}
}

func TestRemainingMinutes(t *testing.T) {
	t.Parallel()

	lockedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	testCases := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "immediately after lock", now: lockedAt, want: 15},
		{name: "ten minutes in", now: lockedAt.Add(10 * time.Minute), want: 5},
		{name: "partial minute rounds up", now: lockedAt.Add(10*time.Minute + 30*time.Second), want: 5},
		{name: "one second left", now: lockedAt.Add(window - time.Second), want: 1},
		{name: "exactly expired", now: lockedAt.Add(window), want: 0},
		{name: "long expired", now: lockedAt.Add(2 * time.Hour), want: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := RemainingMinutes(lockedAt, window, tc.now); got != tc.want {
				t.Fatalf("RemainingMinutes at %v = %d, want %d", tc.now, got, tc.want)
			}
		})
	}
}

func TestRemainingMinutesMonotonicallyDecreases(t *testing.T) {
	t.Parallel()

	lockedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	prev := RemainingMinutes(lockedAt, window, lockedAt)
	for offset := 30 * time.Second; offset <= window+time.Minute; offset += 30 * time.Second {
		got := RemainingMinutes(lockedAt, window, lockedAt.Add(offset))
		if got > prev {
			t.Fatalf("remaining minutes increased from %d to %d at offset %v", prev, got, offset)
		}
		prev = got
	}
	if prev != 0 {
		t.Fatalf("remaining minutes after window = %d, want 0", prev)
	}
}

func TestRemainingLockoutClampsAtZero(t *testing.T) {
	t.Parallel()

	lockedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := RemainingLockout(lockedAt, 15*time.Minute, lockedAt.Add(time.Hour)); got != 0 {
		t.Fatalf("RemainingLockout = %v, want 0", got)
	}
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("DefaultPolicy().Validate() error = %v", err)
	}

	bad := []Policy{
		{MaxAttempts: 0, AttemptWindow: time.Minute, LockoutWindow: time.Minute, Retention: time.Hour},
		{MaxAttempts: 5, AttemptWindow: 0, LockoutWindow: time.Minute, Retention: time.Hour},
		{MaxAttempts: 5, AttemptWindow: time.Minute, LockoutWindow: 0, Retention: time.Hour},
		{MaxAttempts: 5, AttemptWindow: time.Minute, LockoutWindow: time.Minute, Retention: 0},
	}
	for i, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("policy %d: Validate() error = %v, want ErrValidation", i, err)
		}
	}
}

func TestLockoutErrorMessageAndIdentity(t *testing.T) {
	t.Parallel()

	err := &LockoutError{RetryAfterMinutes: 5}
	if err.Error() != "locked, retry in 5 minute(s)" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrLockedOut) {
		t.Fatal("LockoutError should match ErrLockedOut")
	}
}

func TestInvalidCredentialErrorMessages(t *testing.T) {
	t.Parallel()

	withHint := &InvalidCredentialError{RemainingAttempts: 2}
	if withHint.Error() != "invalid email or password, 2 attempt(s) remaining" {
		t.Fatalf("Error() = %q", withHint.Error())
	}

	exhausted := &InvalidCredentialError{}
	if exhausted.Error() != ErrInvalidCredential.Error() {
		t.Fatalf("Error() = %q, want generic message", exhausted.Error())
	}

	if !errors.Is(withHint, ErrInvalidCredential) {
		t.Fatal("InvalidCredentialError should match ErrInvalidCredential")
	}
}

func TestParseRoleFromString(t *testing.T) {
	t.Parallel()

	role, err := ParseRoleFromString(" admin ")
	if err != nil {
		t.Fatalf("ParseRoleFromString() error = %v", err)
	}
	if role != RoleAdmin {
		t.Fatalf("role = %s, want ADMIN", role)
	}

	if _, err := ParseRoleFromString("superuser"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseRoleFromString() error = %v, want ErrValidation", err)
	}
}
