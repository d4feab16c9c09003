//go:build linux

package input

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bendahl/uinput"
)

const evdevLeftShift = 42

// Injector injects input through uinput virtual devices. Foreground tracking
// uses the X11 _NET_ACTIVE_WINDOW property when a display is reachable.
type Injector struct {
	mu       sync.Mutex
	keyboard uinput.Keyboard
	mouse    uinput.Mouse
	focus    *x11Focus
}

// NewInjector creates the virtual keyboard and mouse
func NewInjector(opts Options) (*Injector, error) {
	if opts.UinputPath == "" {
		opts.UinputPath = DefaultOptions().UinputPath
	}
	if opts.DeviceName == "" {
		opts.DeviceName = DefaultOptions().DeviceName
	}

	kb, err := uinput.CreateKeyboard(opts.UinputPath, []byte(opts.DeviceName+" keyboard"))
	if err != nil {
		return nil, fmt.Errorf("%w: create keyboard on %s: %v", ErrUnsupported, opts.UinputPath, err)
	}
	mouse, err := uinput.CreateMouse(opts.UinputPath, []byte(opts.DeviceName+" mouse"))
	if err != nil {
		kb.Close()
		return nil, fmt.Errorf("%w: create mouse on %s: %v", ErrUnsupported, opts.UinputPath, err)
	}

	i := &Injector{keyboard: kb, mouse: mouse}
	focus, err := openX11Focus()
	if err != nil {
		if !errors.Is(err, ErrNoForeground) {
			log.Printf("Input: X11 focus tracking unavailable: %v", err)
		}
	} else {
		i.focus = focus
	}
	return i, nil
}

// Key injects a logical key
func (i *Injector) Key(k Key, down bool) error {
	code := k.ScanCode()
	if code == 0 {
		return fmt.Errorf("input: no scan code for %s", k)
	}
	return i.ScanCode(code, down)
}

// ScanCode injects a raw scan code
func (i *Injector) ScanCode(code uint16, down bool) error {
	ev, ok := EvdevCode(code)
	if !ok {
		return fmt.Errorf("input: no evdev key for scan code 0x%04X", code)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if down {
		return i.keyboard.KeyDown(ev)
	}
	return i.keyboard.KeyUp(ev)
}

// Text types printable ASCII through the US layout. Other runes are rejected
// before anything is sent.
func (i *Injector) Text(s string) error {
	runes := []rune(s)
	for _, r := range runes {
		if _, _, ok := RuneScanCode(r); !ok {
			return fmt.Errorf("input: cannot type %q with uinput", r)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for _, r := range runes {
		code, shift, _ := RuneScanCode(r)
		ev, _ := EvdevCode(code)
		if shift {
			if err := i.keyboard.KeyDown(evdevLeftShift); err != nil {
				return err
			}
		}
		err := i.keyboard.KeyPress(ev)
		if shift {
			if uerr := i.keyboard.KeyUp(evdevLeftShift); err == nil {
				err = uerr
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// MouseMove injects a relative pointer move
func (i *Injector) MouseMove(dx, dy int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.mouse.Move(int32(dx), int32(dy))
}

// MouseButton injects a button press or release
func (i *Injector) MouseButton(b MouseButton, down bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	switch b {
	case ButtonLeft:
		if down {
			return i.mouse.LeftPress()
		}
		return i.mouse.LeftRelease()
	case ButtonRight:
		if down {
			return i.mouse.RightPress()
		}
		return i.mouse.RightRelease()
	case ButtonMiddle:
		if down {
			return i.mouse.MiddlePress()
		}
		return i.mouse.MiddleRelease()
	}
	return fmt.Errorf("invalid mouse button: %d", b)
}

// Scroll injects wheel ticks. REL_WHEEL is positive upwards.
func (i *Injector) Scroll(amount int, horizontal bool) error {
	if amount == 0 {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if horizontal {
		return i.mouse.Wheel(true, int32(amount))
	}
	return i.mouse.Wheel(false, int32(-amount))
}

// Foreground returns the active X11 window
func (i *Injector) Foreground() (Window, error) {
	if i.focus == nil {
		return 0, ErrNoForeground
	}
	return i.focus.active()
}

// SetForeground asks the window manager to activate w
func (i *Injector) SetForeground(w Window) error {
	if i.focus == nil {
		return ErrNoForeground
	}
	return i.focus.activate(w)
}

// Close destroys the virtual devices
func (i *Injector) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	err := errors.Join(i.keyboard.Close(), i.mouse.Close())
	if i.focus != nil {
		i.focus.close()
	}
	return err
}
