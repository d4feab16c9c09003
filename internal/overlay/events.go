// Package overlay carries events to the on-screen keyboard front-end and
// accepts its commands over a local websocket.
package overlay

import (
	"time"

	"padkey/internal/input"
	"padkey/internal/protocol"
	"padkey/internal/state"
)

// Event is one of the notifications the core sends to the overlay. The set is
// closed: VisibilityChanged, ActiveChanged, NavMove, NavSelect and NavShift.
type Event interface {
	Message() protocol.Message
	overlayEvent()
}

// VisibilityChanged asks the overlay to show or hide itself
type VisibilityChanged struct {
	Visible bool
}

// ActiveChanged reports virtualization being switched on or off
type ActiveChanged struct {
	Active bool
}

// NavMove starts (PhaseDown) or stops (PhaseUp) traversal in one direction
type NavMove struct {
	Dx, Dy    int
	Phase     protocol.Phase
	Source    string
	Magnitude float64
	At        time.Time
}

// NavSelect presses or releases the focused key
type NavSelect struct {
	Phase protocol.Phase
	At    time.Time
}

// NavShift cycles the key layer
type NavShift struct{}

func (VisibilityChanged) overlayEvent() {}
func (ActiveChanged) overlayEvent()     {}
func (NavMove) overlayEvent()           {}
func (NavSelect) overlayEvent()         {}
func (NavShift) overlayEvent()          {}

func (e VisibilityChanged) Message() protocol.Message {
	return protocol.Message{Type: protocol.TypeVisibilityChanged, Payload: protocol.VisibilityPayload{Visible: e.Visible}}
}

func (e ActiveChanged) Message() protocol.Message {
	return protocol.Message{Type: protocol.TypeActiveChanged, Payload: protocol.ActivePayload{Active: e.Active}}
}

func (e NavMove) Message() protocol.Message {
	return protocol.Message{Type: protocol.TypeNavMove, Payload: protocol.NavMovePayload{
		Phase:     e.Phase,
		Dx:        e.Dx,
		Dy:        e.Dy,
		Source:    e.Source,
		Magnitude: e.Magnitude,
		Timestamp: e.At.UnixMilli(),
	}}
}

func (e NavSelect) Message() protocol.Message {
	return protocol.Message{Type: protocol.TypeNavSelect, Payload: protocol.NavSelectPayload{
		Phase:     e.Phase,
		Timestamp: e.At.UnixMilli(),
	}}
}

func (NavShift) Message() protocol.Message {
	return protocol.Message{Type: protocol.TypeNavShift, Payload: struct{}{}}
}

// Notifier receives overlay events. Implementations must not block.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ev Event)

func (f NotifierFunc) Notify(ev Event) { f(ev) }

// Fanout delivers each event to every notifier in order
type Fanout []Notifier

func (f Fanout) Notify(ev Event) {
	for _, n := range f {
		if n != nil {
			n.Notify(ev)
		}
	}
}

// Discard drops every event
var Discard Notifier = NotifierFunc(func(Event) {})

// Commands are the operations the overlay and tray may invoke on the core
type Commands interface {
	ToggleActive()
	OpenOverlay()
	CloseOverlay()
	SendKey(req protocol.KeyPayload) error
	SetOverlayWindow(w input.Window)
	Status() state.Snapshot
}
