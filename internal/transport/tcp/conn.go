// Package tcp provides TCP transport implementation for the chat relay.
package tcp

import (
	"bufio"
	"bytes"
	"context"
	"net"
)

// Conn adapts net.Conn to chat.Conn. Raw TCP has no message framing of its
// own, so frames are newline-delimited JSON objects.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewConn wraps a net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, reader: bufio.NewReader(conn)}
}

// Read implements chat.Conn.
// Reads one newline-delimited frame from the TCP connection.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// Write implements chat.Conn.
// Writes one frame followed by the newline delimiter.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')
	_, err := c.conn.Write(buf)
	return err
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
