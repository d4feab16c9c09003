package input

import (
	"fmt"
	"strings"
)

// Key is a logical key that every platform injector can produce
type Key int

const (
	KeyArrowUp Key = iota + 1
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyEnter
	KeyBackspace
	KeySpace
	KeyTab
	KeyEscape
	KeyShift
	KeyControl
	KeyAlt
	KeyMeta
	KeyCapsLock
)

// Scan codes (PC set 1) used by the logical keys. Extended keys carry the 0xE0 prefix.
const (
	ScanEscape     uint16 = 0x01
	ScanBackspace  uint16 = 0x0E
	ScanTab        uint16 = 0x0F
	ScanEnter      uint16 = 0x1C
	ScanControl    uint16 = 0x1D
	ScanShift      uint16 = 0x2A
	ScanAlt        uint16 = 0x38
	ScanSpace      uint16 = 0x39
	ScanCapsLock   uint16 = 0x3A
	ScanArrowUp    uint16 = 0xE048
	ScanArrowLeft  uint16 = 0xE04B
	ScanArrowRight uint16 = 0xE04D
	ScanArrowDown  uint16 = 0xE050
	ScanMeta       uint16 = 0xE05B
)

var keyInfo = map[Key]struct {
	name string
	code uint16
}{
	KeyArrowUp:    {"up", ScanArrowUp},
	KeyArrowDown:  {"down", ScanArrowDown},
	KeyArrowLeft:  {"left", ScanArrowLeft},
	KeyArrowRight: {"right", ScanArrowRight},
	KeyEnter:      {"enter", ScanEnter},
	KeyBackspace:  {"backspace", ScanBackspace},
	KeySpace:      {"space", ScanSpace},
	KeyTab:        {"tab", ScanTab},
	KeyEscape:     {"escape", ScanEscape},
	KeyShift:      {"shift", ScanShift},
	KeyControl:    {"ctrl", ScanControl},
	KeyAlt:        {"alt", ScanAlt},
	KeyMeta:       {"meta", ScanMeta},
	KeyCapsLock:   {"capslock", ScanCapsLock},
}

// ScanCode returns the set-1 scan code for k, or 0 for an unknown key.
func (k Key) ScanCode() uint16 {
	return keyInfo[k].code
}

func (k Key) String() string {
	if info, ok := keyInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// IsExtended reports whether code is an 0xE0-prefixed scan code.
func IsExtended(code uint16) bool {
	return code&0xFF00 == 0xE000
}

// US layout rows: unshifted characters, scan code of the first one, shifted characters.
var layoutRows = []struct {
	plain   string
	first   uint16
	shifted string
}{
	{"1234567890-=", 0x02, "!@#$%^&*()_+"},
	{"qwertyuiop[]", 0x10, "QWERTYUIOP{}"},
	{"asdfghjkl;'`", 0x1E, "ASDFGHJKL:\"~"},
	{"\\zxcvbnm,./", 0x2B, "|ZXCVBNM<>?"},
}

type runeKey struct {
	code  uint16
	shift bool
}

var runeKeys = buildRuneKeys()

func buildRuneKeys() map[rune]runeKey {
	m := map[rune]runeKey{
		' ':  {code: ScanSpace},
		'\n': {code: ScanEnter},
		'\t': {code: ScanTab},
	}
	for _, row := range layoutRows {
		shifted := []rune(row.shifted)
		for i, r := range []rune(row.plain) {
			code := row.first + uint16(i)
			m[r] = runeKey{code: code}
			m[shifted[i]] = runeKey{code: code, shift: true}
		}
	}
	return m
}

// RuneScanCode returns the scan code that types r on a US layout and whether
// shift must be held. ok is false for runes with no key.
func RuneScanCode(r rune) (code uint16, shift bool, ok bool) {
	k, ok := runeKeys[r]
	return k.code, k.shift, ok
}

// Linux input event codes for extended scan codes. Plain set-1 codes up to
// 0x58 match the evdev numbering directly.
var extendedEvdev = map[uint16]int{
	0xE01C: 96,  // KEY_KPENTER
	0xE01D: 97,  // KEY_RIGHTCTRL
	0xE035: 98,  // KEY_KPSLASH
	0xE038: 100, // KEY_RIGHTALT
	0xE047: 102, // KEY_HOME
	0xE048: 103, // KEY_UP
	0xE049: 104, // KEY_PAGEUP
	0xE04B: 105, // KEY_LEFT
	0xE04D: 106, // KEY_RIGHT
	0xE04F: 107, // KEY_END
	0xE050: 108, // KEY_DOWN
	0xE051: 109, // KEY_PAGEDOWN
	0xE052: 110, // KEY_INSERT
	0xE053: 111, // KEY_DELETE
	0xE05B: 125, // KEY_LEFTMETA
	0xE05C: 126, // KEY_RIGHTMETA
	0xE05D: 127, // KEY_COMPOSE
}

// EvdevCode translates a set-1 scan code to a Linux input event key code.
func EvdevCode(code uint16) (int, bool) {
	if IsExtended(code) {
		c, ok := extendedEvdev[code]
		return c, ok
	}
	if code == 0 || code > 0x58 {
		return 0, false
	}
	return int(code), true
}

// Named keys accepted by send_key, in the {name} form the overlay uses.
var namedKeys = map[string]uint16{
	"{enter}":      ScanEnter,
	"{bksp}":       ScanBackspace,
	"{space}":      ScanSpace,
	"{tab}":        ScanTab,
	"{esc}":        ScanEscape,
	"{shift}":      ScanShift,
	"{lock}":       ScanCapsLock,
	"{arrowup}":    ScanArrowUp,
	"{arrowdown}":  ScanArrowDown,
	"{arrowleft}":  ScanArrowLeft,
	"{arrowright}": ScanArrowRight,
}

var modifierKeys = map[string]uint16{
	"shift": ScanShift,
	"ctrl":  ScanControl,
	"alt":   ScanAlt,
	"win":   ScanMeta,
}

// LookupNamedKey resolves an overlay key name such as "{enter}".
func LookupNamedKey(name string) (uint16, bool) {
	code, ok := namedKeys[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// LookupModifier resolves a modifier name: shift, ctrl, alt or win.
func LookupModifier(name string) (uint16, bool) {
	code, ok := modifierKeys[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}
