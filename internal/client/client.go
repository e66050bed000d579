// Package client provides chat clients for both topologies: a direct TCP
// client and a hosted-relay WebSocket client.
package client

import "github.com/yuuma-dev/translachat/pkg/protocol"

// Client defines the interface for chat clients.
// Both TCP and WebSocket implementations satisfy this interface.
type Client interface {
	Connect() error
	Disconnect()
	IsConnected() bool

	// Join announces the local identity to the peer or relay.
	Join() error

	// SendChat sends a chat message carrying the local identity.
	SendChat(text string) error

	// Messages returns the stream of decoded inbound messages. The channel
	// closes when the connection drops.
	Messages() <-chan protocol.Message
}
