package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskwire/taskwire/internal/config"
	"github.com/taskwire/taskwire/internal/domain"
)

func TestDispatcherProcessesJobs(t *testing.T) {
	u1 := uuid.New()
	actor := uuid.New()
	project := testProject(u1, actor)

	notifications := &fakeNotificationStore{}
	broadcaster := &fakeBroadcaster{live: map[uuid.UUID]bool{}}
	svc := newTestService(&fakeProjectStore{project: project}, notifications, broadcaster)

	dispatcher := NewDispatcher(svc, testNotifyConfig, discardLogger())
	dispatcher.Start()
	defer dispatcher.Stop()

	err := dispatcher.Dispatch(ProjectScope(project.ID), domain.EventTaskCreated, shipV1Data(project.ID), actor)
	require.NoError(t, err)

	// The pipeline runs on a worker goroutine; poll for the record.
	require.Eventually(t, func() bool {
		return len(notifications.records()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, u1, notifications.records()[0].RecipientID)
}

func TestDispatcherRejectsWhenQueueFull(t *testing.T) {
	u1 := uuid.New()
	project := testProject(u1)
	svc := newTestService(
		&fakeProjectStore{project: project},
		&fakeNotificationStore{},
		&fakeBroadcaster{live: map[uuid.UUID]bool{}},
	)

	cfg := config.NotifyConfig{
		WorkerCount:          1,
		QueueSize:            1,
		ResolveAttempts:      1,
		ResolveBackoffMillis: 1,
	}
	dispatcher := NewDispatcher(svc, cfg, discardLogger())
	// Workers intentionally not started, so the queue cannot drain.

	require.NoError(t, dispatcher.Dispatch(ProjectScope(project.ID), domain.EventTaskCreated, nil, uuid.New()))

	err := dispatcher.Dispatch(ProjectScope(project.ID), domain.EventTaskCreated, nil, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	project := testProject(uuid.New())
	svc := newTestService(
		&fakeProjectStore{project: project},
		&fakeNotificationStore{},
		&fakeBroadcaster{live: map[uuid.UUID]bool{}},
	)

	dispatcher := NewDispatcher(svc, testNotifyConfig, discardLogger())
	dispatcher.Start()
	dispatcher.Stop()

	err := dispatcher.Dispatch(ProjectScope(project.ID), domain.EventTaskCreated, nil, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped")
}
