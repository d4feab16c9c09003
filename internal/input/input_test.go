package input

import (
	"errors"
	"testing"
)

func TestKeyScanCodes(t *testing.T) {
	tests := []struct {
		key  Key
		code uint16
	}{
		{KeyArrowUp, 0xE048},
		{KeyArrowDown, 0xE050},
		{KeyArrowLeft, 0xE04B},
		{KeyArrowRight, 0xE04D},
		{KeyEnter, 0x1C},
		{KeyMeta, 0xE05B},
	}
	for _, tt := range tests {
		if got := tt.key.ScanCode(); got != tt.code {
			t.Errorf("%s.ScanCode() = 0x%04X, want 0x%04X", tt.key, got, tt.code)
		}
	}
	if Key(0).ScanCode() != 0 {
		t.Error("Expected unknown key to have no scan code")
	}
}

func TestIsExtended(t *testing.T) {
	if !IsExtended(ScanArrowUp) {
		t.Error("Expected arrow up to be extended")
	}
	if IsExtended(ScanEnter) {
		t.Error("Expected enter not to be extended")
	}
}

func TestRuneScanCode(t *testing.T) {
	tests := []struct {
		r     rune
		code  uint16
		shift bool
	}{
		{'1', 0x02, false},
		{'!', 0x02, true},
		{'=', 0x0D, false},
		{'q', 0x10, false},
		{'P', 0x19, true},
		{'a', 0x1E, false},
		{'"', 0x28, true},
		{'`', 0x29, false},
		{'\\', 0x2B, false},
		{'z', 0x2C, false},
		{'?', 0x35, true},
		{' ', 0x39, false},
		{'\n', 0x1C, false},
	}
	for _, tt := range tests {
		code, shift, ok := RuneScanCode(tt.r)
		if !ok {
			t.Errorf("RuneScanCode(%q) not found", tt.r)
			continue
		}
		if code != tt.code || shift != tt.shift {
			t.Errorf("RuneScanCode(%q) = 0x%02X shift=%v, want 0x%02X shift=%v", tt.r, code, shift, tt.code, tt.shift)
		}
	}
	if _, _, ok := RuneScanCode('é'); ok {
		t.Error("Expected no scan code for a non-ASCII rune")
	}
}

func TestEvdevCode(t *testing.T) {
	tests := []struct {
		code uint16
		ev   int
		ok   bool
	}{
		{ScanEscape, 1, true},
		{ScanEnter, 28, true},
		{ScanArrowUp, 103, true},
		{ScanArrowDown, 108, true},
		{ScanArrowLeft, 105, true},
		{ScanArrowRight, 106, true},
		{ScanMeta, 125, true},
		{0, 0, false},
		{0xE0FF, 0, false},
	}
	for _, tt := range tests {
		ev, ok := EvdevCode(tt.code)
		if ev != tt.ev || ok != tt.ok {
			t.Errorf("EvdevCode(0x%04X) = %d,%v, want %d,%v", tt.code, ev, ok, tt.ev, tt.ok)
		}
	}
}

func TestLookupNamedKey(t *testing.T) {
	if code, ok := LookupNamedKey("{bksp}"); !ok || code != 0x0E {
		t.Errorf("Expected {bksp} to be 0x0E, got 0x%X (%v)", code, ok)
	}
	if code, ok := LookupNamedKey("{ArrowRight}"); !ok || code != 0xE04D {
		t.Errorf("Expected {ArrowRight} to be 0xE04D, got 0x%X (%v)", code, ok)
	}
	if _, ok := LookupNamedKey("{nope}"); ok {
		t.Error("Expected unknown key name to fail")
	}
	if code, ok := LookupModifier("win"); !ok || code != 0xE05B {
		t.Errorf("Expected win modifier to be 0xE05B, got 0x%X (%v)", code, ok)
	}
}

func TestDisabledSink(t *testing.T) {
	var s Sink = Disabled{}
	if err := s.MouseMove(1, 1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
	if _, err := s.Foreground(); !errors.Is(err, ErrNoForeground) {
		t.Errorf("Expected ErrNoForeground, got %v", err)
	}
}
