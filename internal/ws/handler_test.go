package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskwire/taskwire/internal/config"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/service/auth"
	"golang.org/x/net/websocket"
)

func newSocketFixture(t *testing.T) (*httptest.Server, *Registry, auth.JWTService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "handler-test-secret-32-characters!!",
		TokenLifetimeMinutes: 5,
	})
	require.NoError(t, err)

	registry := NewRegistry(logger)
	handler := NewHandler(registry, jwtService, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleSocket)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, registry, jwtService
}

func dialSocket(t *testing.T, srv *httptest.Server, cookie string) (*websocket.Conn, error) {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	cfg, err := websocket.NewConfig(wsURL, srv.URL)
	require.NoError(t, err)
	if cookie != "" {
		cfg.Header = make(http.Header)
		cfg.Header.Set("Cookie", cookie)
	}
	return websocket.DialConfig(cfg)
}

func sessionCookie(t *testing.T, jwtService auth.JWTService, principalID uuid.UUID) string {
	t.Helper()
	token, err := jwtService.GenerateToken(context.Background(), principalID)
	require.NoError(t, err)
	return TokenCookieName + "=" + token
}

func waitForConnected(t *testing.T, registry *Registry, principalID uuid.UUID) {
	t.Helper()
	require.Eventually(t, func() bool {
		return registry.Connected(principalID)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandshakeRefusesBadCredentials(t *testing.T) {
	srv, _, _ := newSocketFixture(t)

	t.Run("missing cookie", func(t *testing.T) {
		conn, err := dialSocket(t, srv, "")
		if conn != nil {
			_ = conn.Close()
		}
		require.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		conn, err := dialSocket(t, srv, TokenCookieName+"=not-a-token")
		if conn != nil {
			_ = conn.Close()
		}
		require.Error(t, err)
	})
}

func TestHandshakeRegistersPrincipal(t *testing.T) {
	srv, registry, jwtService := newSocketFixture(t)
	principalID := uuid.New()

	conn, err := dialSocket(t, srv, sessionCookie(t, jwtService, principalID))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	// Auto-registration from the verified handshake, before any register
	// message is sent.
	waitForConnected(t, registry, principalID)
}

func TestExplicitRegisterIsIdempotent(t *testing.T) {
	srv, registry, jwtService := newSocketFixture(t)
	principalID := uuid.New()

	conn, err := dialSocket(t, srv, sessionCookie(t, jwtService, principalID))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	waitForConnected(t, registry, principalID)

	enc := json.NewEncoder(conn)
	for i := 0; i < 3; i++ {
		require.NoError(t, enc.Encode(ClientMessage{Action: ActionRegister, PrincipalID: principalID}))
	}

	// Still exactly one live registration; the connection must survive.
	time.Sleep(50 * time.Millisecond)
	assert.True(t, registry.Connected(principalID))
}

func TestRegisterForForeignPrincipalIgnored(t *testing.T) {
	srv, registry, jwtService := newSocketFixture(t)
	principalID := uuid.New()
	other := uuid.New()

	conn, err := dialSocket(t, srv, sessionCookie(t, jwtService, principalID))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	waitForConnected(t, registry, principalID)

	require.NoError(t, json.NewEncoder(conn).Encode(ClientMessage{Action: ActionRegister, PrincipalID: other}))

	time.Sleep(50 * time.Millisecond)
	assert.False(t, registry.Connected(other))
	assert.True(t, registry.Connected(principalID))
}

func TestDisconnectUnregisters(t *testing.T) {
	srv, registry, jwtService := newSocketFixture(t)
	principalID := uuid.New()

	conn, err := dialSocket(t, srv, sessionCookie(t, jwtService, principalID))
	require.NoError(t, err)

	waitForConnected(t, registry, principalID)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return !registry.Connected(principalID)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPushReachesConnectedClient(t *testing.T) {
	srv, registry, jwtService := newSocketFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broadcaster := NewBroadcaster(registry, logger)

	principalID := uuid.New()
	conn, err := dialSocket(t, srv, sessionCookie(t, jwtService, principalID))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	waitForConnected(t, registry, principalID)

	n, err := domain.NewNotification(principalID, domain.EventTaskAssigned,
		`Task "Ship v1" has been assigned to you in project "Apollo".`,
		domain.Payload{domain.PayloadTaskTitle: "Ship v1"})
	require.NoError(t, err)

	delivered := broadcaster.Push(context.Background(), []*domain.Notification{n})
	require.Equal(t, []uuid.UUID{n.ID}, delivered)

	var frame Frame
	require.NoError(t, json.NewDecoder(conn).Decode(&frame))
	assert.Equal(t, EventNotification, frame.Event)
	assert.Equal(t, n.ID, frame.ID)
	assert.Equal(t, domain.EventTaskAssigned, frame.Type)
	assert.Contains(t, frame.Message, "Ship v1")
}
