package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/api/shared"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/notify"
	"github.com/taskwire/taskwire/internal/platform/logger"
)

// maxEventBodyBytes caps event payloads well above anything the formatter
// will ever read.
const maxEventBodyBytes = 64 * 1024

// EventRequest is the body accepted by the event ingest endpoint. Exactly one
// of ProjectID or Recipients must be set: project events fan out to the
// project audience, standalone events go to the listed principals.
type EventRequest struct {
	Type       string            `json:"type"`
	ProjectID  string            `json:"projectId,omitempty"`
	Recipients []string          `json:"recipients,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
}

// EventDispatcher enqueues notification work without blocking the caller.
type EventDispatcher interface {
	Dispatch(scope notify.Scope, eventType domain.EventType, data domain.Payload, actorID uuid.UUID) error
}

// EventHandler accepts domain events from write-path services and hands them
// to the notification dispatcher. The originating write has already committed
// by the time an event arrives here, so every failure mode short of a
// malformed request is answered 202 and resolved asynchronously.
type EventHandler struct {
	dispatcher EventDispatcher
	logger     *slog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(dispatcher EventDispatcher, logger *slog.Logger) *EventHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for EventHandler")
	}

	return &EventHandler{
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "event_handler")),
	}
}

// IngestEvent handles POST /events requests. The authenticated caller is the
// acting principal and is excluded from the resulting fan-out.
func (h *EventHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || actorID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req EventRequest
	body := http.MaxBytesReader(w, r.Body, maxEventBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	eventType := domain.EventType(req.Type)
	if req.Type == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Event type is required")
		return
	}

	scope, err := buildScope(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.dispatcher.Dispatch(scope, eventType, domain.Payload(req.Data), actorID); err != nil {
		// Dropped dispatches are deliberate: the write already succeeded and
		// notification delivery is best-effort.
		log.Warn("event dispatch dropped",
			slog.String("event_type", req.Type),
			slog.String("actor_id", actorID.String()),
			slog.String("reason", err.Error()))
	}

	w.WriteHeader(http.StatusAccepted)
}

// buildScope validates the target fields of an event request and converts
// them into a notification scope.
func buildScope(req EventRequest) (notify.Scope, error) {
	if req.ProjectID != "" && len(req.Recipients) > 0 {
		return notify.Scope{}, errors.New("projectId and recipients are mutually exclusive")
	}

	if req.ProjectID != "" {
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			return notify.Scope{}, errors.New("Invalid project ID")
		}
		return notify.ProjectScope(projectID), nil
	}

	if len(req.Recipients) == 0 {
		return notify.Scope{}, errors.New("Either projectId or recipients is required")
	}

	principals := make([]uuid.UUID, 0, len(req.Recipients))
	for _, raw := range req.Recipients {
		id, err := uuid.Parse(raw)
		if err != nil {
			return notify.Scope{}, errors.New("Invalid recipient ID")
		}
		principals = append(principals, id)
	}
	return notify.PrincipalScope(principals...), nil
}
