// Package input provides cross-platform synthetic keyboard and mouse injection
// and foreground window tracking.
package input

import "errors"

var (
	// ErrUnsupported is returned when input injection is not available on this platform.
	ErrUnsupported = errors.New("input: injection not supported on this platform")

	// ErrNoForeground is returned by Foreground and SetForeground when the
	// platform has no usable foreground-window concept.
	ErrNoForeground = errors.New("input: foreground window not available")
)

// Window is an opaque native window handle (HWND on Windows, X11 window id on Linux).
// Zero means no window.
type Window uintptr

// MouseButton identifies a synthetic mouse button
type MouseButton int

const (
	ButtonLeft MouseButton = iota + 1
	ButtonRight
	ButtonMiddle
)

func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	}
	return "unknown"
}

// Sink defines the interface for injecting input events into the OS input stream.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Key presses or releases a logical key.
	Key(k Key, down bool) error
	// ScanCode presses or releases a PC set-1 scan code. Codes of the form
	// 0xE0xx are extended keys.
	ScanCode(code uint16, down bool) error
	// Text types s as a sequence of press/release pairs, one per code point.
	Text(s string) error
	// MouseMove moves the pointer by a relative delta in pixels.
	MouseMove(dx, dy int) error
	MouseButton(b MouseButton, down bool) error
	// Scroll emits wheel ticks. Positive amounts scroll down (vertical) or right (horizontal).
	Scroll(amount int, horizontal bool) error
	// Foreground returns the window currently holding keyboard focus.
	Foreground() (Window, error)
	// SetForeground asks the OS to give keyboard focus to w.
	SetForeground(w Window) error
	Close() error
}

// Options configures the platform injector
type Options struct {
	// UinputPath is the uinput device node used on Linux.
	UinputPath string
	// DeviceName is the name given to virtual devices where the platform has one.
	DeviceName string
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		UinputPath: "/dev/uinput",
		DeviceName: "padkey",
	}
}

// Disabled is a Sink that rejects every call. It stands in for the platform
// injector when that could not be created.
type Disabled struct{}

func (Disabled) Key(Key, bool) error                 { return ErrUnsupported }
func (Disabled) ScanCode(uint16, bool) error         { return ErrUnsupported }
func (Disabled) Text(string) error                   { return ErrUnsupported }
func (Disabled) MouseMove(int, int) error            { return ErrUnsupported }
func (Disabled) MouseButton(MouseButton, bool) error { return ErrUnsupported }
func (Disabled) Scroll(int, bool) error              { return ErrUnsupported }
func (Disabled) Foreground() (Window, error)         { return 0, ErrNoForeground }
func (Disabled) SetForeground(Window) error          { return ErrNoForeground }
func (Disabled) Close() error                        { return nil }
