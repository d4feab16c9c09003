package engine

import (
	"fmt"
	"strings"
	"time"

	"padkey/internal/config"
	"padkey/internal/gamepad"
)

// Options tune the polling loop. They can be replaced while the loop runs.
type Options struct {
	PollInterval time.Duration
	Pointer      Curve
	Scroll       Curve
	NavThreshold float64
	FocusSettle  time.Duration
	Bindings     Bindings
}

// Bindings assigns controller buttons to actions
type Bindings struct {
	// Toggle is the two-button combo that switches virtualization on and off
	Toggle     [2]gamepad.Button
	LeftClick  gamepad.Button
	RightClick gamepad.Button
	// Menu opens the overlay in system mode and closes it in overlay mode
	Menu    gamepad.Button
	Confirm gamepad.Button
	Back    gamepad.Button
	Shift   gamepad.Button
}

// DefaultOptions returns the built-in tuning
func DefaultOptions() Options {
	return Options{
		PollInterval: 10 * time.Millisecond,
		Pointer:      Curve{DeadZone: 0.1, Base: 1.0, Accel: 24.0},
		Scroll:       Curve{DeadZone: 0.1, Base: 0.0, Accel: 1.02},
		NavThreshold: 0.5,
		FocusSettle:  10 * time.Millisecond,
		Bindings: Bindings{
			Toggle:     [2]gamepad.Button{gamepad.Start, gamepad.Select},
			LeftClick:  gamepad.RT,
			RightClick: gamepad.LT,
			Menu:       gamepad.Start,
			Confirm:    gamepad.South,
			Back:       gamepad.East,
			Shift:      gamepad.Select,
		},
	}
}

// Validate checks that the options can drive the loop
func (o Options) Validate() error {
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", o.PollInterval)
	}
	if o.NavThreshold <= 0 || o.NavThreshold >= 1 {
		return fmt.Errorf("nav threshold must be in (0, 1), got %v", o.NavThreshold)
	}
	if o.Pointer.DeadZone < 0 || o.Scroll.DeadZone < 0 {
		return fmt.Errorf("dead zones must not be negative")
	}
	if o.FocusSettle < 0 {
		return fmt.Errorf("focus settle must not be negative, got %v", o.FocusSettle)
	}
	t := o.Bindings.Toggle
	if t[0] == gamepad.ButtonNone || t[1] == gamepad.ButtonNone || t[0] == t[1] {
		return fmt.Errorf("toggle combo needs two different buttons, got %s+%s", t[0], t[1])
	}
	return nil
}

// OptionsFromConfig converts the loaded configuration
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	o := Options{
		PollInterval: cfg.PollInterval,
		Pointer:      Curve{DeadZone: cfg.Pointer.DeadZone, Base: cfg.Pointer.Base, Accel: cfg.Pointer.Accel},
		Scroll:       Curve{DeadZone: cfg.Scroll.DeadZone, Base: cfg.Scroll.Base, Accel: cfg.Scroll.Accel},
		NavThreshold: cfg.Nav.Threshold,
		FocusSettle:  cfg.Focus.Settle,
	}

	// entries may also be written as one "start+select" string
	toggle, err := gamepad.ParseCombo(strings.Join(cfg.Buttons.Toggle, "+"))
	if err != nil {
		return Options{}, fmt.Errorf("buttons.toggle: %w", err)
	}
	if len(toggle) != 2 {
		return Options{}, fmt.Errorf("buttons.toggle: expected two buttons, got %d", len(toggle))
	}
	copy(o.Bindings.Toggle[:], toggle)

	single := []struct {
		key  string
		name string
		dst  *gamepad.Button
	}{
		{"buttons.left_click", cfg.Buttons.LeftClick, &o.Bindings.LeftClick},
		{"buttons.right_click", cfg.Buttons.RightClick, &o.Bindings.RightClick},
		{"buttons.menu", cfg.Buttons.Menu, &o.Bindings.Menu},
		{"buttons.confirm", cfg.Buttons.Confirm, &o.Bindings.Confirm},
		{"buttons.back", cfg.Buttons.Back, &o.Bindings.Back},
		{"buttons.shift", cfg.Buttons.Shift, &o.Bindings.Shift},
	}
	for _, s := range single {
		b, err := gamepad.ParseButton(s.name)
		if err != nil {
			return Options{}, fmt.Errorf("%s: %w", s.key, err)
		}
		*s.dst = b
	}

	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}
