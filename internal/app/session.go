// Package app runs the chat session loop shared by every CLI mode: it
// bridges a message source, the display handler and the terminal UI.
package app

import (
	"context"
	"strings"

	"github.com/yuuma-dev/translachat/internal/display"
	"github.com/yuuma-dev/translachat/pkg/protocol"
)

// Renderer is the presentation layer consumed by a session.
type Renderer interface {
	Render(ev display.Event)
	Input() <-chan string
}

// Sender transmits one outgoing chat line.
type Sender func(text string) error

// Session wires inbound messages through the display handler to the UI and
// forwards typed lines out. Translation runs inside the session loop; the
// message source keeps reading into its buffered channel meanwhile, so a slow
// translation delays display only, never receipt.
type Session struct {
	name     string
	messages <-chan protocol.Message
	send     Sender
	handler  *display.Handler
	ui       Renderer
}

// NewSession creates a Session.
func NewSession(name string, messages <-chan protocol.Message, send Sender, handler *display.Handler, ui Renderer) *Session {
	return &Session{
		name:     name,
		messages: messages,
		send:     send,
		handler:  handler,
		ui:       ui,
	}
}

// Run processes inbound messages and user input until the message source
// closes or ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	go s.inputLoop(ctx)
	s.receiveLoop(ctx)
}

func (s *Session) receiveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.messages:
			if !ok {
				s.ui.Render(display.Event{Kind: display.KindSystem, TranslatedText: "Disconnected"})
				return
			}
			switch msg.Type {
			case protocol.TypeChat:
				s.ui.Render(s.handler.HandleChat(ctx, msg))
			case protocol.TypeSystem:
				s.ui.Render(s.handler.HandleSystem(msg))
			case protocol.TypeError:
				s.ui.Render(display.Event{Kind: display.KindSystem, TranslatedText: "Error: " + msg.Text})
			}
		}
	}
}

func (s *Session) inputLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text, ok := <-s.ui.Input():
			if !ok {
				return
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if err := s.send(text); err != nil {
				s.ui.Render(display.Event{Kind: display.KindSystem, TranslatedText: "Failed to send: " + err.Error()})
				continue
			}
			// Local echo: the sender renders its own message immediately,
			// independent of the relay round-trip.
			s.ui.Render(display.Event{Kind: display.KindOwn, Name: s.name, OriginalText: text})
		}
	}
}
