package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/store"
)

// fakeProjectStore returns a fixed project, optionally failing a number of
// lookups first to simulate read-after-write lag.
type fakeProjectStore struct {
	mu           sync.Mutex
	project      *domain.Project
	failuresLeft int
	calls        int
}

func (f *fakeProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, store.ErrProjectNotFound
	}
	if f.project == nil || f.project.ID != id {
		return nil, store.ErrProjectNotFound
	}
	return f.project, nil
}

func (f *fakeProjectStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeNotificationStore keeps records in memory and can be told to reject
// writes for a specific recipient.
type fakeNotificationStore struct {
	mu            sync.Mutex
	created       []*domain.Notification
	failRecipient uuid.UUID
	failAll       bool
	delivered     []uuid.UUID
}

func (f *fakeNotificationStore) CreateBatch(
	ctx context.Context,
	notifications []*domain.Notification,
) ([]*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return nil, store.NewStoreError("notification", "create", "all writes failed", nil)
	}

	persisted := make([]*domain.Notification, 0, len(notifications))
	for _, n := range notifications {
		if n.RecipientID == f.failRecipient {
			continue
		}
		f.created = append(f.created, n)
		persisted = append(persisted, n)
	}
	return persisted, nil
}

func (f *fakeNotificationStore) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
) ([]*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Notification
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkDelivered(ctx context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.delivered = append(f.delivered, ids...)
	for _, n := range f.created {
		for _, id := range ids {
			if n.ID == id {
				n.Delivered = true
			}
		}
	}
	return nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.created {
		if n.ID == id && n.RecipientID == recipientID {
			n.Read = true
			return nil
		}
	}
	return store.ErrNotificationNotFound
}

func (f *fakeNotificationStore) records() []*domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Notification, len(f.created))
	copy(out, f.created)
	return out
}

// fakeBroadcaster counts pushes for recipients named in live.
type fakeBroadcaster struct {
	mu     sync.Mutex
	live   map[uuid.UUID]bool
	pushed []*domain.Notification
}

func (f *fakeBroadcaster) Push(ctx context.Context, notifications []*domain.Notification) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	var delivered []uuid.UUID
	for _, n := range notifications {
		if f.live[n.RecipientID] {
			f.pushed = append(f.pushed, n)
			delivered = append(delivered, n.ID)
		}
	}
	return delivered
}

func (f *fakeBroadcaster) pushedRecords() []*domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Notification, len(f.pushed))
	copy(out, f.pushed)
	return out
}

var _ store.ProjectStore = (*fakeProjectStore)(nil)
var _ store.NotificationStore = (*fakeNotificationStore)(nil)
var _ Broadcaster = (*fakeBroadcaster)(nil)
