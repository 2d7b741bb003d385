package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/store"
)

// Broadcaster is the live-delivery side of the pipeline. Push attempts a
// best-effort delivery of each record to its recipient's live channel,
// skipping recipients without one, and returns the ids of the records whose
// push attempt succeeded. It never blocks on client acknowledgement.
type Broadcaster interface {
	Push(ctx context.Context, notifications []*domain.Notification) []uuid.UUID
}

// Service is the notification core's entry point for write-path
// collaborators. Durability (the store) and liveness (the broadcaster) are
// deliberately decoupled: a record is persisted whether or not its recipient
// is connected, and a failed or absent live push is never an error.
type Service struct {
	resolver      *Resolver
	notifications store.NotificationStore
	broadcaster   Broadcaster
	logger        *slog.Logger
}

// NewService wires the resolver, store, and broadcaster into a Service.
func NewService(
	resolver *Resolver,
	notifications store.NotificationStore,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *Service {
	return &Service{
		resolver:      resolver,
		notifications: notifications,
		broadcaster:   broadcaster,
		logger:        logger.With("component", "notify_service"),
	}
}

// Notify records and broadcasts a domain event: resolve the recipients,
// render the message once, persist one record per recipient, then push to
// whoever is connected right now.
//
// An unresolvable scope fails the call with no records written. Partial
// persistence does not: records that could be written are kept and pushed
// even when others failed. Callers on the write path must treat any error
// as log-and-continue; a missed notification never invalidates the business
// write that triggered it.
func (s *Service) Notify(
	ctx context.Context,
	scope Scope,
	eventType domain.EventType,
	data domain.Payload,
	actorID uuid.UUID,
) error {
	recipients, err := s.resolver.Resolve(ctx, scope, actorID)
	if err != nil {
		return err
	}

	if len(recipients) == 0 {
		s.logger.Debug("event resolved to no recipients, nothing to do",
			"event_type", eventType,
			"actor_id", actorID)
		return nil
	}

	message, payload := Format(eventType, data)

	records := make([]*domain.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		record, err := domain.NewNotification(recipient, eventType, message, payload)
		if err != nil {
			return fmt.Errorf("failed to build notification for recipient %s: %w", recipient, err)
		}
		records = append(records, record)
	}

	created, err := s.notifications.CreateBatch(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to persist notifications: %w", err)
	}
	if len(created) < len(records) {
		s.logger.Warn("some notification records could not be persisted",
			"event_type", eventType,
			"requested", len(records),
			"persisted", len(created))
	}

	delivered := s.broadcaster.Push(ctx, created)
	if len(delivered) > 0 {
		// The delivered flag is bookkeeping; failing to record it must not
		// fail a notification that was persisted and pushed.
		if err := s.notifications.MarkDelivered(ctx, delivered); err != nil {
			s.logger.Warn("failed to mark notifications delivered",
				"event_type", eventType,
				"count", len(delivered),
				"error", err)
		}
	}

	s.logger.Info("notification broadcast complete",
		"event_type", eventType,
		"recipients", len(created),
		"live_deliveries", len(delivered))

	return nil
}
