// Package state holds the activation state shared by the polling loop, the
// tray and the overlay command handlers.
package state

import (
	"errors"
	"sync"
	"time"

	"padkey/internal/input"
)

// ErrDisabled is returned when activation is requested after Disable
var ErrDisabled = errors.New("state: virtualization disabled")

// Transition describes the effect of a toggle attempt on the active flag
type Transition int

const (
	NoChange Transition = iota
	Activated
	Deactivated
)

func (t Transition) String() string {
	switch t {
	case Activated:
		return "activated"
	case Deactivated:
		return "deactivated"
	}
	return "no change"
}

// Snapshot is a consistent copy of the activation state
type Snapshot struct {
	Active       bool         `json:"active"`
	OverlayOpen  bool         `json:"overlay_open"`
	ToggleGuard  bool         `json:"toggle_guard"`
	Disabled     bool         `json:"disabled"`
	LastToggleAt *time.Time   `json:"last_toggle_at,omitempty"`
	TargetWindow input.Window `json:"target_window"`
	OwnWindow    input.Window `json:"own_window"`
}

// Activation is the single shared activation record. Every method runs one
// short critical section; none of them call out while holding the lock.
// overlayOpen implies active at all times, and disabled implies inactive.
type Activation struct {
	mu          sync.Mutex
	active      bool
	overlayOpen bool
	toggleGuard bool
	disabled    bool
	lastToggle  time.Time
	target      input.Window
	own         input.Window
}

// New returns an inactive state with nothing recorded
func New() *Activation {
	return &Activation{}
}

// Snapshot returns a copy of every field
func (a *Activation) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Snapshot{
		Active:       a.active,
		OverlayOpen:  a.overlayOpen,
		ToggleGuard:  a.toggleGuard,
		Disabled:     a.disabled,
		TargetWindow: a.target,
		OwnWindow:    a.own,
	}
	if !a.lastToggle.IsZero() {
		t := a.lastToggle
		s.LastToggleAt = &t
	}
	return s
}

// Mode returns the active and overlay flags together
func (a *Activation) Mode() (active, overlayOpen bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active, a.overlayOpen
}

// ApplyCombo evaluates the combo rule for one tick. A held combo flips the
// active flag once; the guard re-arms only after the combo is released.
func (a *Activation) ApplyCombo(pressed bool, now time.Time) Transition {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !pressed {
		a.toggleGuard = false
		return NoChange
	}
	if a.toggleGuard {
		return NoChange
	}
	a.toggleGuard = true
	return a.flipLocked(now)
}

// Toggle flips the active flag regardless of the combo guard
func (a *Activation) Toggle(now time.Time) Transition {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flipLocked(now)
}

// SetActive forces the active flag, reporting the transition if it changed
func (a *Activation) SetActive(active bool, now time.Time) Transition {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == active {
		return NoChange
	}
	return a.flipLocked(now)
}

func (a *Activation) flipLocked(now time.Time) Transition {
	if !a.active && a.disabled {
		return NoChange
	}
	a.active = !a.active
	a.lastToggle = now
	if !a.active {
		a.overlayOpen = false
		return Deactivated
	}
	return Activated
}

// Disable turns virtualization off for the rest of the process lifetime.
// Later toggles and overlay requests cannot activate it again.
func (a *Activation) Disable(now time.Time) Transition {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disabled = true
	if !a.active {
		return NoChange
	}
	return a.flipLocked(now)
}

// OpenOverlay selects overlay mode. Opening while inactive also activates.
func (a *Activation) OpenOverlay(now time.Time) (opened, activated bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disabled {
		return false, false, ErrDisabled
	}
	if !a.active {
		a.active = true
		a.lastToggle = now
		activated = true
	}
	opened = !a.overlayOpen
	a.overlayOpen = true
	return opened, activated, nil
}

// CloseOverlay returns to system mode and reports whether the overlay was open
func (a *Activation) CloseOverlay() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	was := a.overlayOpen
	a.overlayOpen = false
	return was
}

// SetOwnWindow records the overlay's native window
func (a *Activation) SetOwnWindow(w input.Window) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.own = w
}

// Target returns the window input should land in
func (a *Activation) Target() input.Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target
}

// CaptureTarget stores fg as the target unless it is empty or our own
// window. While the overlay is open the foreground may be the overlay itself
// before it has said hello, so the existing target is kept.
func (a *Activation) CaptureTarget(fg input.Window) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fg == 0 || a.overlayOpen || (a.own != 0 && fg == a.own) {
		return false
	}
	a.target = fg
	return true
}

// ReconcileFocus decides what to do about the current foreground window before
// input is injected. It returns the window to restore, or 0 when nothing
// should change. A foreground window that is neither ours nor the target
// becomes the new target.
func (a *Activation) ReconcileFocus(fg input.Window) input.Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fg == 0 {
		return 0
	}
	if a.own != 0 && fg == a.own {
		return a.target
	}
	if fg != a.target {
		a.target = fg
	}
	return 0
}
