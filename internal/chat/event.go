package chat

import "github.com/yuuma-dev/translachat/pkg/protocol"

// EventKind represents the kind of relay event.
type EventKind int

const (
	EventJoined EventKind = iota
	EventLeft
	EventChatReceived
)

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	switch k {
	case EventJoined:
		return "JOINED"
	case EventLeft:
		return "LEFT"
	case EventChatReceived:
		return "CHAT"
	default:
		return "UNKNOWN"
	}
}

// Event is emitted by the relay when room membership changes or a chat
// message is relayed. Consumers receive events from Relay.Events instead of
// registering callbacks.
type Event struct {
	Kind EventKind
	Room string
	Name string
	Lang string

	// Message carries the relayed chat message for EventChatReceived.
	Message protocol.Message
}
