// Package gamepad reads game controllers and reports button transitions and
// axis values in a layout-independent form.
package gamepad

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBackendUnavailable is returned when the controller backend cannot be initialized.
var ErrBackendUnavailable = errors.New("gamepad: controller backend unavailable")

// ControllerID identifies a connected controller for as long as it stays connected
type ControllerID uint32

// Button is a logical controller button. Face buttons are named by position.
type Button int

const (
	ButtonNone Button = iota
	South
	East
	North
	West
	LB
	RB
	LT
	RT
	Select
	Start
	Home
	L3
	R3
	DPadUp
	DPadDown
	DPadLeft
	DPadRight

	buttonCount
)

var buttonNames = [buttonCount]string{
	ButtonNone: "none",
	South:      "south",
	East:       "east",
	North:      "north",
	West:       "west",
	LB:         "lb",
	RB:         "rb",
	LT:         "lt",
	RT:         "rt",
	Select:     "select",
	Start:      "start",
	Home:       "home",
	L3:         "l3",
	R3:         "r3",
	DPadUp:     "up",
	DPadDown:   "down",
	DPadLeft:   "left",
	DPadRight:  "right",
}

// Alternative names accepted in configuration
var buttonAliases = map[string]Button{
	"a":          South,
	"cross":      South,
	"b":          East,
	"circle":     East,
	"y":          North,
	"triangle":   North,
	"x":          West,
	"square":     West,
	"l1":         LB,
	"r1":         RB,
	"l2":         LT,
	"r2":         RT,
	"zl":         LT,
	"zr":         RT,
	"share":      Select,
	"view":       Select,
	"options":    Start,
	"menu":       Start,
	"guide":      Home,
	"dpad_up":    DPadUp,
	"dpad_down":  DPadDown,
	"dpad_left":  DPadLeft,
	"dpad_right": DPadRight,
}

func (b Button) String() string {
	if b >= 0 && b < buttonCount {
		return buttonNames[b]
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// IsDPad reports whether b is one of the four directional-pad buttons
func (b Button) IsDPad() bool {
	return b >= DPadUp && b <= DPadRight
}

// ParseButton parses a button name such as "south", "a" or "start" (case-insensitive).
func ParseButton(name string) (Button, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for b := South; b < buttonCount; b++ {
		if buttonNames[b] == n {
			return b, nil
		}
	}
	if b, ok := buttonAliases[n]; ok {
		return b, nil
	}
	return ButtonNone, fmt.Errorf("unknown controller button %q", name)
}

// ParseCombo parses a combination string such as "Start+Select".
func ParseCombo(combo string) ([]Button, error) {
	if strings.TrimSpace(combo) == "" {
		return nil, fmt.Errorf("empty button combination")
	}
	var buttons []Button
	for _, part := range strings.Split(combo, "+") {
		b, err := ParseButton(part)
		if err != nil {
			return nil, err
		}
		buttons = append(buttons, b)
	}
	return buttons, nil
}

// Axis is a logical controller axis. Stick Y axes are positive when pushed up;
// trigger axes range over [0, 1].
type Axis int

const (
	LeftX Axis = iota
	LeftY
	RightX
	RightY
	LeftTrigger
	RightTrigger

	axisCount
)

var axisNames = [axisCount]string{"left_x", "left_y", "right_x", "right_y", "lt_axis", "rt_axis"}

func (a Axis) String() string {
	if a >= 0 && a < axisCount {
		return axisNames[a]
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// EventKind distinguishes presses from releases
type EventKind int

const (
	Pressed EventKind = iota + 1
	Released
)

func (k EventKind) String() string {
	switch k {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	}
	return "unknown"
}

// Event is a discrete button transition on one controller
type Event struct {
	Controller ControllerID
	Kind       EventKind
	Button     Button
}

func (e Event) String() string {
	return fmt.Sprintf("controller %d %s %s", e.Controller, e.Button, e.Kind)
}

// Info describes a connected controller
type Info struct {
	ID      ControllerID
	Name    string
	Mapping string
	Vendor  uint16
	Product uint16
}

// Source is the capability the polling loop consumes. All methods are called
// from the goroutine that called Open.
type Source interface {
	Open() error
	Close()
	// Next returns the oldest pending event, or false when none is pending.
	Next() (Event, bool)
	// Controllers lists connected controllers in connection order.
	Controllers() []ControllerID
	// Held reports whether b is down as of the last event returned by Next.
	Held(id ControllerID, b Button) bool
	// Value returns the current reading of a, in [-1, 1].
	Value(id ControllerID, a Axis) float64
}
