package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/platform/logger"
	"github.com/taskwire/taskwire/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using PostgreSQL as the storage backend.
type PostgresNotificationStore struct {
	db store.DBTX
}

// Verify PostgresNotificationStore implements store.NotificationStore
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// NewPostgresNotificationStore creates a new PostgresNotificationStore
func NewPostgresNotificationStore(db store.DBTX) *PostgresNotificationStore {
	return &PostgresNotificationStore{
		db: db,
	}
}

// CreateBatch persists the given notifications, issuing one insert per record
// concurrently. A failure on one record does not prevent the others from being
// created. It returns the records that were actually persisted, and an error
// only when every insert failed.
func (s *PostgresNotificationStore) CreateBatch(
	ctx context.Context,
	notifications []*domain.Notification,
) ([]*domain.Notification, error) {
	log := logger.FromContext(ctx)

	if len(notifications) == 0 {
		return nil, nil
	}

	type result struct {
		notification *domain.Notification
		err          error
	}

	results := make([]result, len(notifications))

	var wg sync.WaitGroup
	for i, n := range notifications {
		wg.Add(1)
		go func(i int, n *domain.Notification) {
			defer wg.Done()
			if err := s.create(ctx, n); err != nil {
				results[i] = result{err: err}
				return
			}
			results[i] = result{notification: n}
		}(i, n)
	}
	wg.Wait()

	created := make([]*domain.Notification, 0, len(notifications))
	var lastErr error
	for _, r := range results {
		if r.err != nil {
			log.Warn("failed to create notification",
				"error", r.err)
			lastErr = r.err
			continue
		}
		created = append(created, r.notification)
	}

	if len(created) == 0 {
		return nil, store.NewStoreError(
			"notification",
			"create_batch",
			"no notifications could be created",
			lastErr,
		)
	}

	return created, nil
}

// create inserts a single notification record.
func (s *PostgresNotificationStore) create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, type, message, data, delivered, read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		n.ID,
		n.RecipientID,
		n.Type,
		n.Message,
		data,
		n.Delivered,
		n.Read,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// ListByRecipient returns all notifications owned by the given recipient,
// newest first.
func (s *PostgresNotificationStore) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
) ([]*domain.Notification, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, recipient_id, type, message, data, delivered, read, created_at, updated_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		log.Error("failed to query notifications",
			"recipient_id", recipientID,
			"error", err)
		return nil, fmt.Errorf("failed to query notifications: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			log.Error("failed to scan notification row",
				"recipient_id", recipientID,
				"error", err)
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", MapError(err))
	}

	return notifications, nil
}

// MarkDelivered flags the given records as having had a successful live push
// attempt. Ids that do not match an existing record are ignored.
func (s *PostgresNotificationStore) MarkDelivered(ctx context.Context, ids []uuid.UUID) error {
	log := logger.FromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		UPDATE notifications
		SET delivered = TRUE, updated_at = NOW()
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to mark notifications delivered",
			"count", len(ids),
			"error", err)
		return fmt.Errorf("failed to mark notifications delivered: %w", MapError(err))
	}

	return nil
}

// MarkRead flags a single record as acknowledged by its owner. The recipient
// filter means a record belonging to someone else looks the same as a missing
// one: both return ErrNotificationNotFound.
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE notifications
		SET read = TRUE, updated_at = NOW()
		WHERE id = $1 AND recipient_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		log.Error("failed to mark notification read",
			"notification_id", id,
			"recipient_id", recipientID,
			"error", err)
		return fmt.Errorf("failed to mark notification read: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, "notification"); err != nil {
		return store.ErrNotificationNotFound
	}

	return nil
}

// scanNotification maps a single row onto a domain.Notification.
func scanNotification(rows *sql.Rows) (*domain.Notification, error) {
	var (
		n    domain.Notification
		data []byte
	)

	err := rows.Scan(
		&n.ID,
		&n.RecipientID,
		&n.Type,
		&n.Message,
		&data,
		&n.Delivered,
		&n.Read,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}

	return &n, nil
}
