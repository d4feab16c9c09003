// Package protocol defines the JSON messages exchanged with the overlay front-end.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Outbound, core to overlay.
const (
	// TypeVisibilityChanged tells the overlay to show or hide itself
	TypeVisibilityChanged MessageType = "osk_visibility_changed"

	// TypeActiveChanged reports that virtualization was switched on or off
	TypeActiveChanged MessageType = "app_active_changed"

	// TypeNavMove starts or stops directional focus traversal
	TypeNavMove MessageType = "osk:nav:move"

	// TypeNavSelect presses or releases the focused key
	TypeNavSelect MessageType = "osk:nav:select"

	// TypeNavShift cycles the key layer
	TypeNavShift MessageType = "osk:nav:shift"

	// TypeError answers an inbound message that could not be handled
	TypeError MessageType = "error"
)

// Inbound, overlay to core.
const (
	// TypeHello is sent by the overlay after connecting, carrying its native window handle
	TypeHello MessageType = "hello"

	// TypeSendKey injects a key, scan code or text into the target application
	TypeSendKey MessageType = "send_key"

	TypeOpenOverlay  MessageType = "open_overlay"
	TypeCloseOverlay MessageType = "close_overlay"
	TypeToggleActive MessageType = "toggle_active"

	// TypeVisibilityAck confirms the overlay applied a visibility change
	TypeVisibilityAck MessageType = "visibility_ack"
)

// Message is the generic container for outbound messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Envelope is an inbound message whose payload is decoded once the type is known
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ParseEnvelope decodes the outer message
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("invalid message: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("invalid message: missing type")
	}
	return env, nil
}

// Decode unmarshals the payload into v. An absent payload leaves v untouched.
func (e Envelope) Decode(v interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", e.Type, err)
	}
	return nil
}

// Phase is the press state carried by key and navigation messages
type Phase string

const (
	PhaseDown   Phase = "down"
	PhaseUp     Phase = "up"
	PhaseRepeat Phase = "repeat"
)

// Valid reports whether p is a known phase
func (p Phase) Valid() bool {
	return p == PhaseDown || p == PhaseUp || p == PhaseRepeat
}

// VisibilityPayload is the payload for TypeVisibilityChanged and TypeVisibilityAck
type VisibilityPayload struct {
	Visible bool `json:"visible"`
}

// ActivePayload is the payload for TypeActiveChanged
type ActivePayload struct {
	Active bool `json:"active"`
}

// NavMovePayload is the payload for TypeNavMove
type NavMovePayload struct {
	Phase     Phase   `json:"phase"`
	Dx        int     `json:"dx"`
	Dy        int     `json:"dy"`
	Source    string  `json:"source"`
	Magnitude float64 `json:"magnitude"`
	Timestamp int64   `json:"ts"` // Unix ms
}

// NavSelectPayload is the payload for TypeNavSelect
type NavSelectPayload struct {
	Phase     Phase `json:"phase"`
	Timestamp int64 `json:"ts"` // Unix ms
}

// HelloPayload is the payload for TypeHello
type HelloPayload struct {
	Window uint64 `json:"window"`
}

// KeyPayload is the payload for TypeSendKey. Exactly one of ScanCode, Key
// and Text is expected; ScanCode wins over Key, Key over Text.
type KeyPayload struct {
	Phase     Phase    `json:"phase"`
	Key       string   `json:"key,omitempty"`
	ScanCode  *uint16  `json:"scan_code,omitempty"`
	Text      string   `json:"text,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// ErrorPayload is the payload for TypeError
type ErrorPayload struct {
	Request MessageType `json:"request"`
	Message string      `json:"message"`
}
