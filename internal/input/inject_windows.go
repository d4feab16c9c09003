//go:build windows

package input

import (
	"fmt"
	"sync"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSendInput           = user32.NewProc("SendInput")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
	keyeventfUnicode     = 0x0004
	keyeventfScanCode    = 0x0008

	mouseeventfMove       = 0x0001
	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
	mouseeventfWheel      = 0x0800
	mouseeventfHWheel     = 0x1000

	wheelDelta = 120
)

// MOUSEINPUT
type mouseInput struct {
	dx        int32
	dy        int32
	mouseData uint32
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// KEYBDINPUT, padded to the size of the INPUT union
type keybdInput struct {
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
	_         [8]byte
}

type mouseRecord struct {
	typ uint32
	mi  mouseInput
}

type keybdRecord struct {
	typ uint32
	ki  keybdInput
}

// Injector injects input with SendInput and manages the foreground window
type Injector struct {
	mu sync.Mutex
}

// NewInjector creates a new input injector for Windows
func NewInjector(opts Options) (*Injector, error) {
	for _, p := range []*windows.LazyProc{procSendInput, procGetForegroundWindow, procSetForegroundWindow} {
		if err := p.Find(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
	}
	return &Injector{}, nil
}

func (i *Injector) sendKeys(recs []keybdRecord) error {
	if len(recs) == 0 {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	n, _, err := procSendInput.Call(uintptr(len(recs)), uintptr(unsafe.Pointer(&recs[0])), unsafe.Sizeof(recs[0]))
	if int(n) != len(recs) {
		return fmt.Errorf("SendInput: inserted %d of %d events: %w", n, len(recs), err)
	}
	return nil
}

func (i *Injector) sendMouse(rec mouseRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&rec)), unsafe.Sizeof(rec))
	if n != 1 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}

func scanRecord(code uint16, down bool) keybdRecord {
	flags := uint32(keyeventfScanCode)
	if IsExtended(code) {
		flags |= keyeventfExtendedKey
	}
	if !down {
		flags |= keyeventfKeyUp
	}
	return keybdRecord{typ: inputKeyboard, ki: keybdInput{scan: code & 0xFF, flags: flags}}
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
	return i.sendKeys([]keybdRecord{scanRecord(code, down)})
}

// Text types s with KEYEVENTF_UNICODE, one press/release pair per UTF-16 unit
func (i *Injector) Text(s string) error {
	units := utf16.Encode([]rune(s))
	recs := make([]keybdRecord, 0, len(units)*2)
	for _, u := range units {
		recs = append(recs,
			keybdRecord{typ: inputKeyboard, ki: keybdInput{scan: u, flags: keyeventfUnicode}},
			keybdRecord{typ: inputKeyboard, ki: keybdInput{scan: u, flags: keyeventfUnicode | keyeventfKeyUp}},
		)
	}
	return i.sendKeys(recs)
}

// MouseMove injects a relative pointer move
func (i *Injector) MouseMove(dx, dy int) error {
	return i.sendMouse(mouseRecord{typ: inputMouse, mi: mouseInput{dx: int32(dx), dy: int32(dy), flags: mouseeventfMove}})
}

// MouseButton injects a button press or release
func (i *Injector) MouseButton(b MouseButton, down bool) error {
	var flags uint32
	switch b {
	case ButtonLeft:
		flags = mouseeventfLeftUp
		if down {
			flags = mouseeventfLeftDown
		}
	case ButtonRight:
		flags = mouseeventfRightUp
		if down {
			flags = mouseeventfRightDown
		}
	case ButtonMiddle:
		flags = mouseeventfMiddleUp
		if down {
			flags = mouseeventfMiddleDown
		}
	default:
		return fmt.Errorf("invalid mouse button: %d", b)
	}
	return i.sendMouse(mouseRecord{typ: inputMouse, mi: mouseInput{flags: flags}})
}

// Scroll injects wheel ticks. A positive vertical wheel delta scrolls up on Windows.
func (i *Injector) Scroll(amount int, horizontal bool) error {
	if amount == 0 {
		return nil
	}
	mi := mouseInput{flags: mouseeventfWheel, mouseData: uint32(int32(-amount * wheelDelta))}
	if horizontal {
		mi = mouseInput{flags: mouseeventfHWheel, mouseData: uint32(int32(amount * wheelDelta))}
	}
	return i.sendMouse(mouseRecord{typ: inputMouse, mi: mi})
}

// Foreground returns the current foreground window
func (i *Injector) Foreground() (Window, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return Window(hwnd), nil
}

// SetForeground brings w to the foreground
func (i *Injector) SetForeground(w Window) error {
	ok, _, err := procSetForegroundWindow.Call(uintptr(w))
	if ok == 0 {
		return fmt.Errorf("SetForegroundWindow(%#x): %w", uintptr(w), err)
	}
	return nil
}

func (i *Injector) Close() error {
	return nil
}
