package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// maxMessageSize caps inbound frames; a peer cannot stream an
	// arbitrarily large message into the read loop.
	maxMessageSize = 64 << 10
)

// Conn is one live bidirectional channel to a single authenticated user.
// Writes on a Conn must be serialized and bounded in time so that one stuck
// peer cannot hold up a fan-out call.
type Conn interface {
	WriteMessage(data []byte) error
	Close() error
}

type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewWebsocketConn wraps an upgraded gorilla connection. The mutex keeps
// concurrent fan-out and read-loop replies from interleaving frames; the
// read limit bounds what the owning read loop will accept.
func NewWebsocketConn(ws *websocket.Conn) Conn {
	ws.SetReadLimit(maxMessageSize)
	return &wsConn{ws: ws}
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
