package engine

import (
	"log"

	"padkey/internal/input"
	"padkey/internal/overlay"
	"padkey/internal/state"
)

// ToggleActive flips virtualization on or off
func (e *Engine) ToggleActive() {
	e.applyTransition(e.state.Toggle(e.now()))
}

// OpenOverlay records the focused window and switches to overlay mode.
// Opening while inactive activates as well.
func (e *Engine) OpenOverlay() {
	e.guardian.Capture()

	opened, activated, err := e.state.OpenOverlay(e.now())
	if err != nil {
		log.Printf("Engine: overlay not opened: %v", err)
		return
	}
	if activated {
		log.Println("Engine: virtualization active")
		e.emit(overlay.ActiveChanged{Active: true})
	}
	if opened {
		log.Println("Engine: overlay opened")
	}
	e.emit(overlay.VisibilityChanged{Visible: true})
}

// CloseOverlay returns to system mode and hands focus back to the target
func (e *Engine) CloseOverlay() {
	if e.state.CloseOverlay() {
		log.Println("Engine: overlay closed")
	}
	e.emit(overlay.VisibilityChanged{Visible: false})
	e.guardian.Before()
}

// Disable switches virtualization off for good. It is used when no
// controller or injection backend is available.
func (e *Engine) Disable() {
	log.Println("Engine: virtualization disabled")
	e.applyTransition(e.state.Disable(e.now()))
}

// SetOverlayWindow records the overlay's own native window
func (e *Engine) SetOverlayWindow(w input.Window) {
	e.state.SetOwnWindow(w)
}

// Status returns a snapshot of the activation state
func (e *Engine) Status() state.Snapshot {
	return e.state.Snapshot()
}

// applyTransition publishes the side effects of an activation flip.
// Deactivation always hides the overlay, whether or not it was open.
func (e *Engine) applyTransition(t state.Transition) {
	switch t {
	case state.Activated:
		log.Println("Engine: virtualization active")
		e.emit(overlay.ActiveChanged{Active: true})
	case state.Deactivated:
		log.Println("Engine: virtualization inactive")
		e.emit(overlay.ActiveChanged{Active: false})
		e.emit(overlay.VisibilityChanged{Visible: false})
		e.guardian.Before()
	}
}
