// Package display turns received protocol messages into display-ready events,
// fetching translations for foreign-language chat text.
package display

import (
	"context"

	"github.com/yuuma-dev/translachat/pkg/protocol"
)

// Kind represents the kind of display event.
type Kind int

const (
	KindOwn Kind = iota
	KindPeer
	KindSystem
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindOwn:
		return "OWN"
	case KindPeer:
		return "PEER"
	case KindSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Event is a display-ready message for the presentation layer. System text
// travels in TranslatedText; OriginalText is empty when showing the original
// would duplicate the translated line.
type Event struct {
	Kind           Kind
	Name           string
	TranslatedText string
	OriginalText   string
	SourceLang     string
}

// Translator is the gateway the handler fetches translations from.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Handler decides, per received message, whether translation is needed and
// produces the corresponding display event. A received chat message is never
// dropped: translation failures degrade to the untranslated text annotated
// with the failure reason.
type Handler struct {
	selfName      string
	selfLang      string
	translator    Translator
	onTranslating func(bool)
}

// NewHandler creates a Handler for the local identity. onTranslating, when
// not nil, is toggled around translation calls for UI feedback and cleared on
// both success and failure paths.
func NewHandler(selfName, selfLang string, translator Translator, onTranslating func(bool)) *Handler {
	return &Handler{
		selfName:      selfName,
		selfLang:      selfLang,
		translator:    translator,
		onTranslating: onTranslating,
	}
}

// HandleChat produces the display event for a received chat message. It may
// block on the translation gateway.
func (h *Handler) HandleChat(ctx context.Context, msg protocol.Message) Event {
	// A relayed copy of our own message is rendered from the original text,
	// never translated.
	if msg.Name == h.selfName && msg.Lang == h.selfLang {
		return Event{Kind: KindOwn, Name: msg.Name, OriginalText: msg.Text}
	}

	if msg.Lang == h.selfLang {
		return Event{
			Kind:           KindPeer,
			Name:           msg.Name,
			TranslatedText: msg.Text,
			SourceLang:     msg.Lang,
		}
	}

	h.setTranslating(true)
	defer h.setTranslating(false)

	translated, err := h.translator.Translate(ctx, msg.Text, msg.Lang, h.selfLang)
	if err != nil {
		translated = "[Translation error: " + err.Error() + "] " + msg.Text
	}
	return Event{
		Kind:           KindPeer,
		Name:           msg.Name,
		TranslatedText: translated,
		OriginalText:   msg.Text,
		SourceLang:     msg.Lang,
	}
}

// HandleSystem produces the display event for a system notification.
func (h *Handler) HandleSystem(msg protocol.Message) Event {
	return Event{Kind: KindSystem, TranslatedText: msg.Text}
}

func (h *Handler) setTranslating(on bool) {
	if h.onTranslating != nil {
		h.onTranslating(on)
	}
}
