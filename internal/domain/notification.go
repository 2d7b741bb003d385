package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of domain event a notification describes.
type EventType string

// The closed set of notification event types.
const (
	EventProjectCreated EventType = "PROJECT_CREATED"
	EventProjectUpdated EventType = "PROJECT_UPDATED"
	EventMemberAdded    EventType = "MEMBER_ADDED"
	EventMemberRemoved  EventType = "MEMBER_REMOVED"
	EventTaskCreated    EventType = "TASK_CREATED"
	EventTaskUpdated    EventType = "TASK_UPDATED"
	EventTaskAssigned   EventType = "TASK_ASSIGNED"
	EventTaskCompleted  EventType = "TASK_COMPLETED"
	EventTaskDeleted    EventType = "TASK_DELETED"
)

// knownEventTypes is used for validation of incoming event types.
var knownEventTypes = map[EventType]struct{}{
	EventProjectCreated: {},
	EventProjectUpdated: {},
	EventMemberAdded:    {},
	EventMemberRemoved:  {},
	EventTaskCreated:    {},
	EventTaskUpdated:    {},
	EventTaskAssigned:   {},
	EventTaskCompleted:  {},
	EventTaskDeleted:    {},
}

// Known reports whether t is one of the defined event types.
// Unknown types are still formatted and delivered with a generic message,
// so this is informational rather than a hard gate.
func (t EventType) Known() bool {
	_, ok := knownEventTypes[t]
	return ok
}

// Payload carries the event-specific identifiers and titles a client needs
// for deep-linking (task id/title, project id/title).
type Payload map[string]string

// Payload keys shared between the formatter, the store, and the wire protocol.
const (
	PayloadProjectID    = "projectId"
	PayloadProjectTitle = "projectTitle"
	PayloadTaskID       = "taskId"
	PayloadTaskTitle    = "taskTitle"
)

// Common validation errors for Notification
var (
	ErrEmptyNotificationID        = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationRecipient = errors.New("notification recipient cannot be empty")
	ErrEmptyNotificationType      = errors.New("notification type cannot be empty")
	ErrEmptyNotificationMessage   = errors.New("notification message cannot be empty")
)

// Notification is one durable record of a delivery decision: a single
// recipient told about a single domain event. Records are created once and
// mutated only by the read/delivered flags; they are never merged across
// recipients and never deleted by this subsystem.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Type        EventType `json:"type"`
	Message     string    `json:"message"`
	Data        Payload   `json:"data"`
	Delivered   bool      `json:"delivered"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewNotification creates an undelivered, unread Notification for the given
// recipient. The message is rendered once at creation time and never
// re-rendered later. Returns an error if validation fails.
func NewNotification(
	recipientID uuid.UUID,
	eventType EventType,
	message string,
	data Payload,
) (*Notification, error) {
	now := time.Now().UTC()
	n := &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        eventType,
		Message:     message,
		Data:        data,
		Delivered:   false,
		Read:        false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
// Returns an error if any field fails validation.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.RecipientID == uuid.Nil {
		return ErrEmptyNotificationRecipient
	}

	if n.Type == "" {
		return ErrEmptyNotificationType
	}

	if n.Message == "" {
		return ErrEmptyNotificationMessage
	}

	return nil
}
