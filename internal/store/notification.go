package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
// One record exists per (recipient, originating event); records are created
// once and afterwards mutated only through MarkDelivered and MarkRead.
type NotificationStore interface {
	// CreateBatch persists the given notifications, one insert per record,
	// issued concurrently rather than as a single transaction. A failed
	// insert for one recipient must not prevent inserts for the others.
	// It returns the records that were actually persisted. An error is
	// returned only when no record could be created at all.
	CreateBatch(ctx context.Context, notifications []*domain.Notification) ([]*domain.Notification, error)

	// ListByRecipient returns all notifications owned by the given recipient,
	// newest first.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error)

	// MarkDelivered flags the given records as having had a successful live
	// push attempt. Unknown ids are ignored.
	MarkDelivered(ctx context.Context, ids []uuid.UUID) error

	// MarkRead flags a single record as acknowledged by its owner. Returns
	// ErrNotificationNotFound if the record does not exist or belongs to a
	// different recipient.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}

// ProjectStore provides read-only access to projects for recipient
// resolution. Project writes happen elsewhere in the system.
type ProjectStore interface {
	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}
