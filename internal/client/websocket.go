package client

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yuuma-dev/translachat/pkg/protocol"
)

// WebSocketClient is a hosted-topology chat client. It connects to a relay's
// WebSocket endpoint and joins a room by code.
type WebSocketClient struct {
	url        string
	code       string
	name       string
	lang       string
	conn       *websocket.Conn
	messages   chan protocol.Message
	mu         sync.RWMutex
	done       chan struct{}
	doneOnce   sync.Once
	wg         sync.WaitGroup
	isShutdown bool
}

// NewWebSocket creates a WebSocketClient for the relay endpoint at url
// (ws:// or wss://) and the room identified by code.
func NewWebSocket(url, code, name, lang string) *WebSocketClient {
	return &WebSocketClient{
		url:      url,
		code:     code,
		name:     name,
		lang:     lang,
		messages: make(chan protocol.Message, 16),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection to the relay.
func (c *WebSocketClient) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.wg.Add(1)
	go c.receiveMessages()

	return nil
}

// Disconnect closes the WebSocket connection. The relay observes the
// disconnect and fans out the leave notification.
func (c *WebSocketClient) Disconnect() {
	c.mu.Lock()
	if c.isShutdown {
		c.mu.Unlock()
		return
	}
	c.isShutdown = true
	if c.conn != nil {
		_ = c.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
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
func (c *WebSocketClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Join announces the local identity to the relay, routed to the room code.
func (c *WebSocketClient) Join() error {
	return c.send(protocol.NewRoomJoin(c.code, c.name, c.lang))
}

// SendChat sends a chat message.
func (c *WebSocketClient) SendChat(text string) error {
	return c.send(protocol.NewChat(c.name, c.lang, text))
}

// Messages returns the channel for receiving messages.
func (c *WebSocketClient) Messages() <-chan protocol.Message {
	return c.messages
}

func (c *WebSocketClient) send(msg protocol.Message) error {
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

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// receiveMessages continuously receives messages until the connection drops.
func (c *WebSocketClient) receiveMessages() {
	defer c.wg.Done()
	defer close(c.messages)

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			return
		}

		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read failed", "err", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg protocol.Message
		if err := msg.Decode(data); err != nil {
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
