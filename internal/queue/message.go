package queue

import (
	"fmt"
	"strings"
	"time"
)

// SecurityEventMessage is the broker payload for auth security events. It
// carries identifiers only, never the email or credential material.
type SecurityEventMessage struct {
	EventID           string    `json:"eventId"`
	EventType         EventType `json:"eventType"`
	AccountID         string    `json:"accountId"`
	CorrelationID     string    `json:"correlationId,omitempty"`
	RetryAfterMinutes int       `json:"retryAfterMinutes,omitempty"`
	OccurredAt        time.Time `json:"occurredAt"`
}

func (m SecurityEventMessage) Validate() error {
	if strings.TrimSpace(m.EventID) == "" {
		return fmt.Errorf("eventId is required")
	}
	if !m.EventType.IsValid() {
		return fmt.Errorf("invalid event type %q", m.EventType)
	}
	if strings.TrimSpace(m.AccountID) == "" {
		return fmt.Errorf("accountId is required")
	}
	return nil
}
