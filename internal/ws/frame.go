package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/domain"
)

// EventNotification is the server→client frame event for a pushed notification.
const EventNotification = "notification"

// ActionRegister is the client→server message requesting (re-)registration.
// It is idempotent and always safe to re-issue; clients send it on connect
// because the handshake-time auto-registration and their own readiness to
// receive can race.
const ActionRegister = "register"

// Frame is a server→client websocket message. Every frame carries the
// notification record's id so clients can deduplicate deliveries observed
// twice across a reconnect window.
type Frame struct {
	Event     string           `json:"event"`
	ID        uuid.UUID        `json:"id"`
	Type      domain.EventType `json:"type"`
	Message   string           `json:"message"`
	Data      domain.Payload   `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// ClientMessage is a client→server websocket message.
type ClientMessage struct {
	Action      string    `json:"action"`
	PrincipalID uuid.UUID `json:"principalId"`
}
