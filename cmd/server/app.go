package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Registers the pgx driver under database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/taskwire/taskwire/internal/config"
	"github.com/taskwire/taskwire/internal/notify"
	"github.com/taskwire/taskwire/internal/platform/logger"
	"github.com/taskwire/taskwire/internal/platform/postgres"
	"github.com/taskwire/taskwire/internal/service/auth"
	"github.com/taskwire/taskwire/internal/store"
	"github.com/taskwire/taskwire/internal/ws"
)

// dbConnectTimeout bounds the initial connection check and migration run.
const dbConnectTimeout = 30 * time.Second

// application holds the wired dependencies of the server binary.
type application struct {
	config *config.Config
	logger *slog.Logger

	db                *sql.DB
	notificationStore store.NotificationStore
	projectStore      store.ProjectStore

	jwtService auth.JWTService

	registry   *ws.Registry
	wsHandler  *ws.Handler
	dispatcher *notify.Dispatcher
}

// newApplication connects to the database, applies migrations, and wires the
// notification pipeline end to end.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbConnectTimeout)
	defer cancel()
	ctx = logger.WithLogger(ctx, appLogger)

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	notificationStore := postgres.NewPostgresNotificationStore(db)
	projectStore := postgres.NewPostgresProjectStore(db)

	registry := ws.NewRegistry(appLogger)
	broadcaster := ws.NewBroadcaster(registry, appLogger)
	wsHandler := ws.NewHandler(registry, jwtService, appLogger)

	resolver := notify.NewResolver(projectStore, cfg.Notify, appLogger)
	service := notify.NewService(resolver, notificationStore, broadcaster, appLogger)
	dispatcher := notify.NewDispatcher(service, cfg.Notify, appLogger)

	return &application{
		config:            cfg,
		logger:            appLogger,
		db:                db,
		notificationStore: notificationStore,
		projectStore:      projectStore,
		jwtService:        jwtService,
		registry:          registry,
		wsHandler:         wsHandler,
		dispatcher:        dispatcher,
	}, nil
}

// run starts the dispatcher workers and serves HTTP until shutdown.
func (app *application) run() error {
	app.dispatcher.Start()

	router := app.setupRouter()
	return app.startHTTPServer(context.Background(), router)
}

// cleanup releases resources in reverse dependency order: stop accepting
// notification work, then close the database the workers were writing to.
func (app *application) cleanup() {
	app.dispatcher.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database", "error", err)
	}
}
