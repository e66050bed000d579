package app

import (
	"fmt"

	"github.com/yuuma-dev/translachat/internal/chat"
	"github.com/yuuma-dev/translachat/pkg/protocol"
)

// RelayMessages adapts a relay's event stream into the protocol message
// stream a Session consumes, so a hosting process participates in its own
// room the same way a remote client does. The channel closes when the relay
// stops.
func RelayMessages(relay *chat.Relay) <-chan protocol.Message {
	out := make(chan protocol.Message, 16)
	go func() {
		defer close(out)
		for ev := range relay.Events() {
			switch ev.Kind {
			case chat.EventJoined:
				out <- protocol.NewSystem(fmt.Sprintf("%s (%s) joined", ev.Name, ev.Lang))
			case chat.EventLeft:
				out <- protocol.NewSystem(ev.Name + " left")
			case chat.EventChatReceived:
				out <- ev.Message
			}
		}
	}()
	return out
}
