package ws

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Channel is one live connection to a principal. Send must be safe for
// concurrent use; the broadcaster and the connection handler may both hold
// a reference.
type Channel interface {
	Send(frame Frame) error
	Close() error
}

// Registry maps each authenticated principal to its single live channel.
// A new registration for a principal replaces (and closes) the previous
// channel: this design has no multi-device fan-out. The registry is
// process-wide, in-memory state; a restart empties it and only live
// delivery is lost, never the durable records.
type Registry struct {
	mu       sync.Mutex
	channels map[uuid.UUID]Channel
	logger   *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		channels: make(map[uuid.UUID]Channel),
		logger:   logger.With("component", "connection_registry"),
	}
}

// Register associates a principal with a channel, replacing any prior
// association. Re-registering the current channel is a no-op, so the client's
// explicit register message is always safe after the handshake already
// registered it. A replaced channel is closed so its stale reader fails fast.
func (r *Registry) Register(principalID uuid.UUID, ch Channel) {
	r.mu.Lock()
	previous, hadPrevious := r.channels[principalID]
	if hadPrevious && previous == ch {
		r.mu.Unlock()
		return
	}
	r.channels[principalID] = ch
	r.mu.Unlock()

	if hadPrevious {
		// Closed outside the lock; Close may block on the transport.
		if err := previous.Close(); err != nil {
			r.logger.Debug("failed to close replaced channel",
				"principal_id", principalID,
				"error", err)
		}
		r.logger.Debug("replaced live channel", "principal_id", principalID)
		return
	}

	r.logger.Debug("registered live channel", "principal_id", principalID)
}

// Unregister removes the entry holding the given channel. Close events only
// carry the channel, so this is a reverse lookup by value. Unregistering a
// channel that is absent, or that was already replaced by a newer one for
// the same principal, is a no-op.
func (r *Registry) Unregister(ch Channel) {
	r.mu.Lock()
	var principalID uuid.UUID
	found := false
	for id, registered := range r.channels {
		if registered == ch {
			principalID = id
			found = true
			break
		}
	}
	if found {
		delete(r.channels, principalID)
	}
	r.mu.Unlock()

	if found {
		r.logger.Debug("unregistered live channel", "principal_id", principalID)
	}
}

// Channel returns the live channel for a principal, if any.
func (r *Registry) Channel(principalID uuid.UUID) (Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[principalID]
	return ch, ok
}

// Connected reports whether the principal currently has a live channel.
func (r *Registry) Connected(principalID uuid.UUID) bool {
	_, ok := r.Channel(principalID)
	return ok
}
