package queue

import (
	"testing"
	"time"
)

func TestRoutingKey(t *testing.T) {
	t.Parallel()

	if got := RoutingKey(EventAccountLocked); got != "auth.account.locked" {
		t.Fatalf("RoutingKey(account.locked) = %s", got)
	}
	if got := RoutingKey(EventLoginSucceeded); got != "auth.login.succeeded" {
		t.Fatalf("RoutingKey(login.succeeded) = %s", got)
	}
}

func TestEventTypeIsValid(t *testing.T) {
	t.Parallel()

	if !EventAccountLocked.IsValid() {
		t.Fatal("account.locked should be valid")
	}
	if !EventLoginSucceeded.IsValid() {
		t.Fatal("login.succeeded should be valid")
	}
	if EventType("password.reset").IsValid() {
		t.Fatal("unknown event type should be invalid")
	}
}

func TestSecurityEventMessageValidate(t *testing.T) {
	t.Parallel()

	valid := SecurityEventMessage{
		EventID:    "evt-1",
		EventType:  EventAccountLocked,
		AccountID:  "acc-1",
		OccurredAt: time.Now().UTC(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	missingID := valid
	missingID.EventID = " "
	if err := missingID.Validate(); err == nil {
		t.Fatal("Validate() expected error for missing event id")
	}

	badType := valid
	badType.EventType = "nonsense"
	if err := badType.Validate(); err == nil {
		t.Fatal("Validate() expected error for invalid event type")
	}

	missingAccount := valid
	missingAccount.AccountID = ""
	if err := missingAccount.Validate(); err == nil {
		t.Fatal("Validate() expected error for missing account id")
	}
}
