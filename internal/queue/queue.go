package queue

import (
	"context"
	"strings"
)

// Publisher publishes security events to the broker.
type Publisher interface {
	Publish(ctx context.Context, event SecurityEventMessage) error
	Close() error
}

// EventType identifies a security event emitted by the verification flow.
type EventType string

const (
	EventAccountLocked  EventType = "account.locked"
	EventLoginSucceeded EventType = "login.succeeded"
)

func (t EventType) String() string { return string(t) }

func (t EventType) IsValid() bool {
	switch t {
	case EventAccountLocked, EventLoginSucceeded:
		return true
	}
	return false
}

const (
	// EventsExchange is the topic exchange security events are published to.
	EventsExchange = "auth.events"
	// AuditQueue is the durable queue external audit consumers read from.
	AuditQueue = "security.audit"
	// auditBindingKey subscribes the audit queue to every auth event.
	auditBindingKey = "auth.#"
)

// RoutingKey returns the routing key for an event type, e.g. auth.account.locked.
func RoutingKey(eventType EventType) string {
	return "auth." + strings.ToLower(eventType.String())
}
