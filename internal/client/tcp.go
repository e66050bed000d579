package client

import (
	"bufio"
	"fmt"
	"net"
	"sync"

	"github.com/yuuma-dev/translachat/pkg/protocol"
)

// TCPClient is a direct-topology chat client over a raw TCP socket.
// Frames are newline-delimited JSON objects.
type TCPClient struct {
	address  string
	name     string
	lang     string
	conn     net.Conn
	reader   *bufio.Reader
	messages chan protocol.Message
	mu       sync.RWMutex
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// NewTCP creates a TCPClient for the peer at address.
func NewTCP(address, name, lang string) *TCPClient {
	return &TCPClient{
		address:  address,
		name:     name,
		lang:     lang,
		messages: make(chan protocol.Message, 16),
		done:     make(chan struct{}),
	}
}

// Connect establishes a connection to the host.
func (c *TCPClient) Connect() error {
	conn, err := net.Dial("tcp", c.address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.address, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.mu.Unlock()

	c.wg.Add(1)
	go c.receiveMessages()

	return nil
}

// Disconnect closes the connection. The host observes the disconnect and
// notifies remaining peers.
func (c *TCPClient) Disconnect() {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.doneOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// IsConnected returns whether the client is connected.
func (c *TCPClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Join announces the local identity to the host.
func (c *TCPClient) Join() error {
	return c.send(protocol.NewJoin(c.name, c.lang))
}

// SendChat sends a chat message.
func (c *TCPClient) SendChat(text string) error {
	return c.send(protocol.NewChat(c.name, c.lang, text))
}

// Messages returns the channel for receiving messages.
func (c *TCPClient) Messages() <-chan protocol.Message {
	return c.messages
}

func (c *TCPClient) send(msg protocol.Message) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// receiveMessages continuously receives messages until the connection drops.
func (c *TCPClient) receiveMessages() {
	defer c.wg.Done()
	defer close(c.messages)

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return
		}

		var msg protocol.Message
		if err := msg.Decode(line); err != nil {
			// Malformed frames are dropped.
			continue
		}

		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}
