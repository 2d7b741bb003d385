// Package wsclient consumes the live notification channel: it keeps exactly
// one connection to the server, registers the principal on every connect,
// deduplicates pushed frames by notification id, and reconnects forever on a
// fixed delay until told to stop.
package wsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/ws"
	"golang.org/x/net/websocket"
)

// State is the listener's connection state.
type State string

// Possible listener states.
const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// DefaultReconnectDelay is the fixed wait between reconnect attempts.
// Reconnection is cheap and idempotent, so the delay does not grow.
const DefaultReconnectDelay = 3 * time.Second

// maxSeenIDs bounds the dedupe window. Duplicate deliveries only occur
// around reconnects, so a small window is plenty.
const maxSeenIDs = 1024

// Config configures a Listener.
type Config struct {
	// URL is the websocket endpoint, e.g. "ws://localhost:4000/ws".
	URL string

	// Origin is sent as the websocket origin; defaults to the URL host
	// over http when empty.
	Origin string

	// Token is the signed session credential presented as the handshake
	// cookie.
	Token string

	// PrincipalID is the identity to register for.
	PrincipalID uuid.UUID

	// Handler receives each deduplicated notification frame. It is called
	// from the listener's goroutine; slow handlers delay subsequent frames.
	Handler func(frame ws.Frame)

	// ReconnectDelay overrides DefaultReconnectDelay when positive.
	ReconnectDelay time.Duration

	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// Listener maintains the live channel for one principal.
type Listener struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	conn      *websocket.Conn
	seen      map[uuid.UUID]struct{}
	seenOrder []uuid.UUID
	cancel    context.CancelFunc
}

// New validates cfg and creates a Listener in the disconnected state.
func New(cfg Config) (*Listener, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("listener URL is required")
	}
	if cfg.PrincipalID == uuid.Nil {
		return nil, fmt.Errorf("listener principal id is required")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("listener handler is required")
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Listener{
		cfg:    cfg,
		logger: logger.With("component", "notification_listener", "principal_id", cfg.PrincipalID),
		state:  StateDisconnected,
		seen:   make(map[uuid.UUID]struct{}),
	}, nil
}

// State returns the current connection state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Run connects and consumes frames until ctx is done or Close is called.
// Connection loss moves the listener back to connecting and retries after a
// fixed delay, indefinitely. Run always returns the cancellation cause.
func (l *Listener) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	defer l.setState(StateDisconnected)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.setState(StateConnecting)

		conn, err := l.dial()
		if err != nil {
			l.logger.Debug("connect failed, will retry", "error", err)
			if !l.waitReconnect(ctx) {
				return ctx.Err()
			}
			continue
		}

		l.trackConn(conn)
		l.setState(StateConnected)
		l.logger.Debug("connected")

		if err := l.register(conn); err != nil {
			l.logger.Debug("register failed", "error", err)
		}

		l.consume(ctx, conn)

		l.trackConn(nil)
		_ = conn.Close()

		if err := ctx.Err(); err != nil {
			return err
		}

		l.logger.Debug("connection lost, reconnecting")
		if !l.waitReconnect(ctx) {
			return ctx.Err()
		}
	}
}

// Close tears down the channel and stops any pending reconnect. Safe to
// call multiple times and before Run.
func (l *Listener) Close() {
	l.mu.Lock()
	cancel := l.cancel
	conn := l.conn
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

func (l *Listener) dial() (*websocket.Conn, error) {
	origin := l.cfg.Origin
	if origin == "" {
		origin = "http://localhost/"
	}

	config, err := websocket.NewConfig(l.cfg.URL, origin)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket config: %w", err)
	}
	if l.cfg.Token != "" {
		config.Header = make(http.Header)
		config.Header.Set("Cookie", ws.TokenCookieName+"="+l.cfg.Token)
	}

	return websocket.DialConfig(config)
}

// register announces the principal explicitly. The server already
// registered us from the handshake, but the explicit path is idempotent and
// covers the race between handshake identity and client readiness.
func (l *Listener) register(conn *websocket.Conn) error {
	return json.NewEncoder(conn).Encode(ws.ClientMessage{
		Action:      ws.ActionRegister,
		PrincipalID: l.cfg.PrincipalID,
	})
}

func (l *Listener) consume(ctx context.Context, conn *websocket.Conn) {
	decoder := json.NewDecoder(conn)

	for {
		var frame ws.Frame
		if err := decoder.Decode(&frame); err != nil {
			if ctx.Err() == nil {
				l.logger.Debug("read failed", "error", err)
			}
			return
		}

		if frame.Event != ws.EventNotification {
			continue
		}

		// A frame can be observed more than once around a reconnect
		// window; surface each notification id only once.
		if l.markSeen(frame.ID) {
			l.cfg.Handler(frame)
		}
	}
}

// markSeen records the id and reports whether it was new.
func (l *Listener) markSeen(id uuid.UUID) bool {
	if id == uuid.Nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[id]; ok {
		return false
	}

	l.seen[id] = struct{}{}
	l.seenOrder = append(l.seenOrder, id)
	if len(l.seenOrder) > maxSeenIDs {
		oldest := l.seenOrder[0]
		l.seenOrder = l.seenOrder[1:]
		delete(l.seen, oldest)
	}
	return true
}

func (l *Listener) setState(state State) {
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
}

func (l *Listener) trackConn(conn *websocket.Conn) {
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
}

// waitReconnect sleeps the fixed reconnect delay. It reports false when ctx
// was cancelled while waiting.
func (l *Listener) waitReconnect(ctx context.Context) bool {
	timer := time.NewTimer(l.cfg.ReconnectDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
