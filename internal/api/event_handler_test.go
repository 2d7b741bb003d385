package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskwire/taskwire/internal/api/shared"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/notify"
)

// fakeDispatcher records dispatched events.
type fakeDispatcher struct {
	err error

	scope     notify.Scope
	eventType domain.EventType
	data      domain.Payload
	actorID   uuid.UUID
	calls     int
}

func (f *fakeDispatcher) Dispatch(
	scope notify.Scope,
	eventType domain.EventType,
	data domain.Payload,
	actorID uuid.UUID,
) error {
	f.calls++
	f.scope = scope
	f.eventType = eventType
	f.data = data
	f.actorID = actorID
	return f.err
}

func postEvent(t *testing.T, h *EventHandler, actorID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	if actorID != uuid.Nil {
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, actorID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.IngestEvent(rec, req)
	return rec
}

func TestIngestProjectEvent(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := NewEventHandler(dispatcher, testHandlerLogger())

	actorID := uuid.New()
	projectID := uuid.New()

	rec := postEvent(t, handler, actorID,
		`{"type":"TASK_CREATED","projectId":"`+projectID.String()+`","data":{"projectTitle":"Apollo"}}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, dispatcher.calls)
	assert.Equal(t, domain.EventTaskCreated, dispatcher.eventType)
	assert.Equal(t, actorID, dispatcher.actorID)
	assert.True(t, dispatcher.scope.IsProject())
	assert.Equal(t, projectID, dispatcher.scope.ProjectID())
	assert.Equal(t, "Apollo", dispatcher.data[domain.PayloadProjectTitle])
}

func TestIngestExplicitRecipients(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := NewEventHandler(dispatcher, testHandlerLogger())

	recipient := uuid.New()
	rec := postEvent(t, handler, uuid.New(),
		`{"type":"TASK_ASSIGNED","recipients":["`+recipient.String()+`"],"data":{"taskTitle":"Ship"}}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, dispatcher.calls)
	assert.False(t, dispatcher.scope.IsProject())
}

func TestIngestEventValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty_body", body: ``},
		{name: "missing_type", body: `{"projectId":"` + uuid.NewString() + `"}`},
		{name: "no_target", body: `{"type":"TASK_CREATED"}`},
		{name: "bad_project_id", body: `{"type":"TASK_CREATED","projectId":"nope"}`},
		{name: "bad_recipient", body: `{"type":"TASK_ASSIGNED","recipients":["nope"]}`},
		{
			name: "both_targets",
			body: `{"type":"TASK_CREATED","projectId":"` + uuid.NewString() +
				`","recipients":["` + uuid.NewString() + `"]}`,
		},
		{name: "malformed_json", body: `{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{}
			handler := NewEventHandler(dispatcher, testHandlerLogger())

			rec := postEvent(t, handler, uuid.New(), tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, dispatcher.calls)
		})
	}
}

func TestIngestEventRequiresPrincipal(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := NewEventHandler(dispatcher, testHandlerLogger())

	rec := postEvent(t, handler, uuid.Nil, `{"type":"TASK_CREATED","projectId":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, dispatcher.calls)
}

func TestIngestEventAcceptsEvenWhenQueueFull(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("notification queue is full")}
	handler := NewEventHandler(dispatcher, testHandlerLogger())

	rec := postEvent(t, handler, uuid.New(),
		`{"type":"TASK_CREATED","projectId":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code, "dropped dispatch must not fail the caller")
}
