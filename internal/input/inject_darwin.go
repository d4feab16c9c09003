//go:build darwin

package input

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <ApplicationServices/ApplicationServices.h>

bool hasAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

CGPoint currentPointer() {
    CGEventRef event = CGEventCreate(NULL);
    CGPoint cursor = CGEventGetLocation(event);
    CFRelease(event);
    return cursor;
}

void postPointerMove(CGFloat dx, CGFloat dy) {
    CGPoint pos = currentPointer();
    CGPoint next = CGPointMake(pos.x + dx, pos.y + dy);
    CGEventRef event = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, next, kCGMouseButtonLeft);
    CGEventSetIntegerValueField(event, kCGMouseEventDeltaX, (int64_t)dx);
    CGEventSetIntegerValueField(event, kCGMouseEventDeltaY, (int64_t)dy);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}

void postPointerButton(int button, bool down) {
    CGMouseButton cgButton;
    CGEventType type;
    switch (button) {
        case 1: cgButton = kCGMouseButtonLeft; type = down ? kCGEventLeftMouseDown : kCGEventLeftMouseUp; break;
        case 2: cgButton = kCGMouseButtonRight; type = down ? kCGEventRightMouseDown : kCGEventRightMouseUp; break;
        case 3: cgButton = kCGMouseButtonCenter; type = down ? kCGEventOtherMouseDown : kCGEventOtherMouseUp; break;
        default: return;
    }
    CGEventRef event = CGEventCreateMouseEvent(NULL, type, currentPointer(), cgButton);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}

void postKey(CGKeyCode code, bool down) {
    CGEventRef event = CGEventCreateKeyboardEvent(NULL, code, down);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}

void postUnicode(UniChar ch) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, 0, true);
    CGEventKeyboardSetUnicodeString(down, 1, &ch);
    CGEventPost(kCGSessionEventTap, down);
    CFRelease(down);

    CGEventRef up = CGEventCreateKeyboardEvent(NULL, 0, false);
    CGEventKeyboardSetUnicodeString(up, 1, &ch);
    CGEventPost(kCGSessionEventTap, up);
    CFRelease(up);
}

void postScroll(int32_t vertical, int32_t horizontal) {
    CGEventRef event = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitLine, 2, vertical, horizontal);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}
*/
import "C"
import (
	"fmt"
	"log"
	"sync"
	"unicode/utf16"
)

// Set-1 scan code to macOS virtual key code
var scanToMacKey = map[uint16]uint16{
	0x01: 0x35, // Escape
	0x02: 0x12, // 1
	0x03: 0x13, // 2
	0x04: 0x14, // 3
	0x05: 0x15, // 4
	0x06: 0x17, // 5
	0x07: 0x16, // 6
	0x08: 0x1A, // 7
	0x09: 0x1C, // 8
	0x0A: 0x19, // 9
	0x0B: 0x1D, // 0
	0x0C: 0x1B, // -
	0x0D: 0x18, // =
	0x0E: 0x33, // Backspace -> Delete
	0x0F: 0x30, // Tab
	0x10: 0x0C, // Q
	0x11: 0x0D, // W
	0x12: 0x0E, // E
	0x13: 0x0F, // R
	0x14: 0x11, // T
	0x15: 0x10, // Y
	0x16: 0x20, // U
	0x17: 0x22, // I
	0x18: 0x1F, // O
	0x19: 0x23, // P
	0x1A: 0x21, // [
	0x1B: 0x1E, // ]
	0x1C: 0x24, // Return
	0x1D: 0x3B, // Control
	0x1E: 0x00, // A
	0x1F: 0x01, // S
	0x20: 0x02, // D
	0x21: 0x03, // F
	0x22: 0x05, // G
	0x23: 0x04, // H
	0x24: 0x26, // J
	0x25: 0x28, // K
	0x26: 0x25, // L
	0x27: 0x29, // ;
	0x28: 0x27, // '
	0x29: 0x32, // `
	0x2A: 0x38, // Shift
	0x2B: 0x2A, // backslash
	0x2C: 0x06, // Z
	0x2D: 0x07, // X
	0x2E: 0x08, // C
	0x2F: 0x09, // V
	0x30: 0x0B, // B
	0x31: 0x2D, // N
	0x32: 0x2E, // M
	0x33: 0x2B, // ,
	0x34: 0x2F, // .
	0x35: 0x2C, // /
	0x36: 0x3C, // Right Shift
	0x38: 0x3A, // Alt -> Option
	0x39: 0x31, // Space
	0x3A: 0x39, // Caps Lock
	0x3B: 0x7A, // F1
	0x3C: 0x78, // F2
	0x3D: 0x63, // F3
	0x3E: 0x76, // F4
	0x3F: 0x60, // F5
	0x40: 0x61, // F6
	0x41: 0x62, // F7
	0x42: 0x64, // F8
	0x43: 0x65, // F9
	0x44: 0x6D, // F10
	0x57: 0x67, // F11
	0x58: 0x6F, // F12

	0xE01C: 0x4C, // Keypad Enter
	0xE01D: 0x3E, // Right Control
	0xE038: 0x3D, // Right Alt -> Right Option
	0xE047: 0x73, // Home
	0xE048: 0x7E, // Up
	0xE049: 0x74, // Page Up
	0xE04B: 0x7B, // Left
	0xE04D: 0x7C, // Right
	0xE04F: 0x77, // End
	0xE050: 0x7D, // Down
	0xE051: 0x79, // Page Down
	0xE052: 0x72, // Insert -> Help
	0xE053: 0x75, // Delete -> Forward Delete
	0xE05B: 0x37, // Left Windows -> Command
	0xE05C: 0x36, // Right Windows -> Right Command
}

// Injector represents a macOS input injector using CoreGraphics events.
// macOS exposes no foreground window handle to us, so focus tracking is unavailable.
type Injector struct {
	mu sync.Mutex
}

// NewInjector creates a new input injector for macOS
func NewInjector(opts Options) (*Injector, error) {
	if !bool(C.hasAccessibilityPermissions()) {
		log.Println("Input: accessibility permission not granted, injected events may be ignored")
	}
	return &Injector{}, nil
}

// Key injects a logical key
func (i *Injector) Key(k Key, down bool) error {
	code := k.ScanCode()
	if code == 0 {
		return fmt.Errorf("input: no scan code for %s", k)
	}
	return i.ScanCode(code, down)
}

// ScanCode injects a key event, translating the scan code to a macOS key code
func (i *Injector) ScanCode(code uint16, down bool) error {
	macKey, ok := scanToMacKey[code]
	if !ok {
		return fmt.Errorf("input: no macOS key for scan code 0x%04X", code)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	C.postKey(C.CGKeyCode(macKey), C.bool(down))
	return nil
}

// Text types s as unicode keyboard events
func (i *Injector) Text(s string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, u := range utf16.Encode([]rune(s)) {
		C.postUnicode(C.UniChar(u))
	}
	return nil
}

// MouseMove injects a relative pointer move
func (i *Injector) MouseMove(dx, dy int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	C.postPointerMove(C.CGFloat(dx), C.CGFloat(dy))
	return nil
}

// MouseButton injects a button press or release
func (i *Injector) MouseButton(b MouseButton, down bool) error {
	if b < ButtonLeft || b > ButtonMiddle {
		return fmt.Errorf("invalid mouse button: %d", b)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	C.postPointerButton(C.int(b), C.bool(down))
	return nil
}

// Scroll injects line-based wheel ticks. Positive wheel values scroll up.
func (i *Injector) Scroll(amount int, horizontal bool) error {
	if amount == 0 {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if horizontal {
		C.postScroll(0, C.int32_t(-amount))
	} else {
		C.postScroll(C.int32_t(-amount), 0)
	}
	return nil
}

func (i *Injector) Foreground() (Window, error) {
	return 0, ErrNoForeground
}

func (i *Injector) SetForeground(Window) error {
	return ErrNoForeground
}

func (i *Injector) Close() error {
	return nil
}
