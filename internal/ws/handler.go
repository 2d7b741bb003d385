package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/service/auth"
	"golang.org/x/net/websocket"
)

// TokenCookieName is the cookie carrying the signed session credential on
// the websocket handshake.
const TokenCookieName = "token"

// maxDecodeErrorsPerConn bounds how many consecutive malformed frames a
// client may send before the connection is dropped.
const maxDecodeErrorsPerConn = 8

// principalContextKey carries the authenticated principal id from the
// handshake gate into the connection handler.
type principalContextKey struct{}

// Handler is the websocket endpoint principals connect to for live
// notifications. The handshake is authenticated before any registration
// happens; an invalid or missing credential refuses the connection outright
// with no retry on the server side.
type Handler struct {
	registry   *Registry
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewHandler creates a Handler backed by the given registry and credential
// verifier.
func NewHandler(registry *Registry, jwtService auth.JWTService, logger *slog.Logger) *Handler {
	return &Handler{
		registry:   registry,
		jwtService: jwtService,
		logger:     logger.With("component", "ws_handler"),
	}
}

// HandleSocket authenticates the handshake and hands the connection to the
// read loop. Mounted at GET /ws.
func (h *Handler) HandleSocket(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		h.logger.Debug("websocket handshake missing credential", "remote", r.RemoteAddr)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		h.logger.Debug("websocket handshake credential rejected",
			"remote", r.RemoteAddr,
			"error", err)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	ctx := context.WithValue(r.Context(), principalContextKey{}, claims.UserID)

	websocket.Handler(h.serve).ServeHTTP(w, r.WithContext(ctx))
}

// tokenFromRequest extracts the handshake credential from the session cookie.
func tokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// serve runs one connection: register the handshake-derived principal
// immediately, then process client messages until the connection drops.
func (h *Handler) serve(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	principalID := uuid.Nil
	if request := conn.Request(); request != nil {
		if id, ok := request.Context().Value(principalContextKey{}).(uuid.UUID); ok {
			principalID = id
		}
	}
	if principalID == uuid.Nil {
		// The auth gate always runs first; a missing principal means the
		// handler was mounted without it.
		h.logger.Error("websocket connection reached handler without principal")
		return
	}

	ch := newPeer(conn)

	// Registration happens twice: here, from the verified handshake
	// identity, and again when the client sends its explicit register
	// message. The two may race during reconnects; both are idempotent.
	h.registry.Register(principalID, ch)
	defer h.registry.Unregister(ch)

	log := h.logger.With("principal_id", principalID)
	log.Debug("websocket connected")

	decoder := json.NewDecoder(conn)
	decodeErrors := 0

	for {
		var msg ClientMessage
		if err := decoder.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debug("websocket disconnected")
				return
			}
			decodeErrors++
			if decodeErrors >= maxDecodeErrorsPerConn {
				log.Warn("dropping connection after repeated malformed frames")
				return
			}
			continue
		}
		decodeErrors = 0

		switch msg.Action {
		case ActionRegister:
			// Clients may only register as themselves; the handshake
			// identity wins over anything claimed in the message.
			if msg.PrincipalID != uuid.Nil && msg.PrincipalID != principalID {
				log.Warn("register message for foreign principal ignored",
					"claimed_principal_id", msg.PrincipalID)
				continue
			}
			h.registry.Register(principalID, ch)
		default:
			log.Debug("ignoring unknown client action", "action", msg.Action)
		}
	}
}
