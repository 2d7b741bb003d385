// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/api/shared"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/platform/logger"
	"github.com/taskwire/taskwire/internal/store"
)

// NotificationResponse represents the response data for a notification
type NotificationResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Delivered bool              `json:"delivered"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationStore store.NotificationStore
	logger            *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(
	notificationStore store.NotificationStore,
	logger *slog.Logger,
) *NotificationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NotificationHandler")
	}

	return &NotificationHandler{
		notificationStore: notificationStore,
		logger:            logger.With(slog.String("component", "notification_handler")),
	}
}

// ListNotifications handles GET /notifications requests.
// It returns all notifications owned by the authenticated principal,
// newest first.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	notifications, err := h.notificationStore.ListByRecipient(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w,
			r,
			http.StatusInternalServerError,
			"Failed to list notifications",
			err,
		)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, toNotificationResponse(n))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// MarkNotificationRead handles PUT /notifications/{id}/read requests.
// Only the owning recipient can acknowledge a notification; a record owned
// by someone else is reported as not found.
func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	err = h.notificationStore.MarkRead(r.Context(), notificationID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotificationNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Notification not found")
			return
		}
		shared.RespondWithErrorAndLog(
			w,
			r,
			http.StatusInternalServerError,
			"Failed to mark notification read",
			err,
		)
		return
	}

	log.Debug("notification marked read",
		slog.String("notification_id", notificationID.String()),
		slog.String("user_id", userID.String()))

	w.WriteHeader(http.StatusNoContent)
}

// toNotificationResponse maps a domain notification onto the API shape.
func toNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Message:   n.Message,
		Data:      n.Data,
		Delivered: n.Delivered,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
