// Package protocol defines the wire representation of chat messages.
//
// The wire format is one UTF-8 JSON object per frame:
//
//	{"type":"join","name":"Naoto","lang":"ja"}
//	{"type":"chat","name":"Naoto","lang":"ja","text":"..."}
//	{"type":"system","text":"..."}
//	{"type":"error","text":"..."}
//
// A join sent to the hosted relay additionally carries the room code.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Type identifies the kind of a protocol message.
type Type string

const (
	TypeJoin   Type = "join"
	TypeChat   Type = "chat"
	TypeSystem Type = "system"
	TypeError  Type = "error"
)

// String returns the string representation of Type.
func (t Type) String() string {
	return string(t)
}

// valid reports whether t is one of the known message types.
func (t Type) valid() bool {
	switch t {
	case TypeJoin, TypeChat, TypeSystem, TypeError:
		return true
	default:
		return false
	}
}

// Message is a single protocol message. Which fields are meaningful depends
// on Type: join uses Name/Lang (and Code against the hosted relay), chat uses
// Name/Lang/Text, system and error use Text only.
type Message struct {
	Type Type   `json:"type"`
	Name string `json:"name,omitempty"`
	Lang string `json:"lang,omitempty"`
	Text string `json:"text,omitempty"`
	Code string `json:"code,omitempty"`
}

// NewJoin creates a join message announcing a peer identity.
func NewJoin(name, lang string) Message {
	return Message{Type: TypeJoin, Name: name, Lang: lang}
}

// NewRoomJoin creates a join message routed to a hosted relay room.
func NewRoomJoin(code, name, lang string) Message {
	return Message{Type: TypeJoin, Name: name, Lang: lang, Code: code}
}

// NewChat creates a chat message.
func NewChat(name, lang, text string) Message {
	return Message{Type: TypeChat, Name: name, Lang: lang, Text: text}
}

// NewSystem creates a system notification message.
func NewSystem(text string) Message {
	return Message{Type: TypeSystem, Text: text}
}

// NewError creates an error notification message.
func NewError(text string) Message {
	return Message{Type: TypeError, Text: text}
}

// Encode encodes the message into a JSON wire frame.
func (m *Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// Decode decodes a JSON wire frame into the message. Malformed payloads and
// unknown type tags return an error so the caller can drop the frame; Decode
// never panics on arbitrary input.
func (m *Message) Decode(data []byte) error {
	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if !decoded.Type.valid() {
		return fmt.Errorf("unknown message type %q", decoded.Type)
	}
	*m = decoded
	return nil
}
