// Package queue contains the auth audit event pipeline: handlers publish
// login/register/logout/refresh-denied events to a durable RabbitMQ queue and
// a background consumer appends them to logs/auth.log.
package queue

import "time"

// AuditQueueName is the durable queue carrying auth audit events.
const AuditQueueName = "auth.events"

// EventType classifies an audit event.
type EventType string

const (
	EventRegister      EventType = "user.registered"
	EventLogin         EventType = "user.logged_in"
	EventLogout        EventType = "user.logged_out"
	EventRefreshDenied EventType = "refresh.denied"
)

// AuthEvent is the audit record published for security-relevant auth
// outcomes. EventRefreshDenied in particular flags possible token theft: a
// superseded refresh token was presented after rotation.
type AuthEvent struct {
	Type   EventType `json:"type"`
	UserID uint64    `json:"user_id"`
	Email  string    `json:"email"`
	IP     string    `json:"ip,omitempty"`
	At     time.Time `json:"at"`
}
