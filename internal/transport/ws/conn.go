// Package ws provides WebSocket transport implementation for the chat relay.
package ws

import (
	"context"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Conn adapts an upgraded server-side WebSocket connection to chat.Conn.
// Frames are WebSocket text messages carrying one JSON object each.
type Conn struct {
	conn net.Conn
}

// NewConn wraps an upgraded net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Read implements chat.Conn.
// Reads a text message from the WebSocket connection.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	return wsutil.ReadClientText(c.conn)
}

// Write implements chat.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	return wsutil.WriteServerText(c.conn, data)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	// Send close frame
	_ = wsutil.WriteServerMessage(c.conn, ws.OpClose, nil)
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
