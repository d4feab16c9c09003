package engine

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"padkey/internal/input"
	"padkey/internal/protocol"
)

// SendKey injects one key event requested by the overlay. A scan code wins
// over a named key, a named key over text. On down the modifiers are pressed
// in order before the key; on up the key is released first and the
// modifiers after it in reverse order. Repeat presses the key alone. Text is
// typed on down and repeat and ignored on up.
//
// Unknown keys and modifiers are rejected before anything is injected.
// Injection failures do not stop the sequence, so a modifier pressed on down
// is still released on up.
func (e *Engine) SendKey(req protocol.KeyPayload) error {
	if !req.Phase.Valid() {
		return fmt.Errorf("send_key: invalid phase %q", req.Phase)
	}

	mods := make([]uint16, 0, len(req.Modifiers))
	for _, name := range req.Modifiers {
		code, ok := input.LookupModifier(name)
		if !ok {
			return fmt.Errorf("%w: modifier %q", ErrUnknownKey, name)
		}
		mods = append(mods, code)
	}

	var code uint16
	switch {
	case req.ScanCode != nil:
		code = *req.ScanCode
	case req.Key != "":
		c, shift, err := resolveKey(req.Key)
		if err != nil {
			return err
		}
		code = c
		if shift && !containsCode(mods, input.ScanShift) {
			mods = append(mods, input.ScanShift)
		}
	case req.Text != "":
		if req.Phase == protocol.PhaseUp {
			return nil
		}
		e.guardian.Before()
		return e.sink.Text(req.Text)
	default:
		return fmt.Errorf("send_key: no key, scan_code or text given")
	}

	e.guardian.Before()

	var errs []error
	press := func(c uint16, down bool) {
		if err := e.sink.ScanCode(c, down); err != nil {
			errs = append(errs, fmt.Errorf("scan 0x%04X: %w", c, err))
		}
	}

	switch req.Phase {
	case protocol.PhaseDown:
		for _, m := range mods {
			press(m, true)
		}
		press(code, true)
	case protocol.PhaseUp:
		press(code, false)
		for i := len(mods) - 1; i >= 0; i-- {
			press(mods[i], false)
		}
	case protocol.PhaseRepeat:
		press(code, true)
	}
	return errors.Join(errs...)
}

// resolveKey accepts a named key such as "{enter}" or a single character
// from the US layout
func resolveKey(name string) (code uint16, shift bool, err error) {
	if c, ok := input.LookupNamedKey(name); ok {
		return c, false, nil
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if c, shift, ok := input.RuneScanCode(r); ok {
			return c, shift, nil
		}
	}
	return 0, false, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

func containsCode(codes []uint16, c uint16) bool {
	for _, x := range codes {
		if x == c {
			return true
		}
	}
	return false
}
