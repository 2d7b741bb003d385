package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskwire/taskwire/internal/api"
	apiMiddleware "github.com/taskwire/taskwire/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	notificationHandler := api.NewNotificationHandler(app.notificationStore, app.logger)
	eventHandler := api.NewEventHandler(app.dispatcher, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/notifications", notificationHandler.ListNotifications)
			r.Put("/notifications/{id}/read", notificationHandler.MarkNotificationRead)

			r.Post("/events", eventHandler.IngestEvent)
		})
	})

	// Websocket handshake authenticates via cookie, not Authorization header,
	// so it sits outside the bearer-token group.
	r.Get("/ws", app.wsHandler.HandleSocket)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
