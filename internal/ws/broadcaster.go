package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/domain"
)

// Broadcaster pushes persisted notification records to connected recipients.
// Delivery is fire-and-forget: no acknowledgement is awaited and nothing is
// retried or queued for recipients without a live channel. Offline catch-up
// happens through the notification query API, not here.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
	timeFunc func() time.Time // Injectable for testing
}

// NewBroadcaster creates a Broadcaster over the given registry.
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		logger:   logger.With("component", "live_broadcaster"),
		timeFunc: time.Now,
	}
}

// Push emits one frame per record to each recipient that has a live channel
// right now and returns the ids of the records whose write succeeded.
// Recipients without a channel are the expected offline case and are
// skipped silently; a failed write is logged and skipped the same way.
func (b *Broadcaster) Push(ctx context.Context, notifications []*domain.Notification) []uuid.UUID {
	var delivered []uuid.UUID

	for _, n := range notifications {
		if ctx.Err() != nil {
			break
		}

		ch, ok := b.registry.Channel(n.RecipientID)
		if !ok {
			continue
		}

		frame := Frame{
			Event:     EventNotification,
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Message,
			Data:      n.Data,
			Timestamp: b.timeFunc().UTC(),
		}

		if err := ch.Send(frame); err != nil {
			b.logger.Debug("live push failed",
				"notification_id", n.ID,
				"recipient_id", n.RecipientID,
				"error", err)
			continue
		}

		delivered = append(delivered, n.ID)
	}

	return delivered
}
