package ws

import (
	"encoding/json"
	"sync"

	"golang.org/x/net/websocket"
)

// peer wraps a websocket connection as a Channel. The encoder is guarded by
// a mutex because the broadcaster and the connection handler write
// concurrently.
type peer struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	encoder *json.Encoder
}

func newPeer(conn *websocket.Conn) *peer {
	return &peer{
		conn:    conn,
		encoder: json.NewEncoder(conn),
	}
}

// Send writes one frame to the connection.
func (p *peer) Send(frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// Close tears down the underlying connection, which also unblocks the
// handler's read loop.
func (p *peer) Close() error {
	return p.conn.Close()
}

var _ Channel = (*peer)(nil)
