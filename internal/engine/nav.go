package engine

import (
	"padkey/internal/gamepad"
	"padkey/internal/overlay"
	"padkey/internal/protocol"
)

const navSource = "gamepad"

// navStep is one start or stop of traversal along a single axis
type navStep struct {
	dx, dy int
	phase  protocol.Phase
}

// stickState is the direction currently held on each axis, in screen
// orientation (dy -1 is up)
type stickState struct {
	dirX, dirY int
}

func classify(v, threshold float64) int {
	switch {
	case v > threshold:
		return 1
	case v < -threshold:
		return -1
	}
	return 0
}

// update classifies a stick reading and returns the steps caused by a change
// of direction. Each axis is handled on its own, so a diagonal produces two
// independent pairs.
func (s *stickState) update(x, y, threshold float64) []navStep {
	var steps []navStep

	if nx := classify(x, threshold); nx != s.dirX {
		if s.dirX != 0 {
			steps = append(steps, navStep{dx: s.dirX, phase: protocol.PhaseUp})
		}
		if nx != 0 {
			steps = append(steps, navStep{dx: nx, phase: protocol.PhaseDown})
		}
		s.dirX = nx
	}

	// stick y is positive up, traversal dy is positive down
	if ny := -classify(y, threshold); ny != s.dirY {
		if s.dirY != 0 {
			steps = append(steps, navStep{dy: s.dirY, phase: protocol.PhaseUp})
		}
		if ny != 0 {
			steps = append(steps, navStep{dy: ny, phase: protocol.PhaseDown})
		}
		s.dirY = ny
	}

	return steps
}

// release returns the stop of every direction still held and clears them
func (s *stickState) release() []navStep {
	var steps []navStep
	if s.dirX != 0 {
		steps = append(steps, navStep{dx: s.dirX, phase: protocol.PhaseUp})
	}
	if s.dirY != 0 {
		steps = append(steps, navStep{dy: s.dirY, phase: protocol.PhaseUp})
	}
	s.dirX, s.dirY = 0, 0
	return steps
}

func dpadVector(b gamepad.Button) (dx, dy int) {
	switch b {
	case gamepad.DPadUp:
		return 0, -1
	case gamepad.DPadDown:
		return 0, 1
	case gamepad.DPadLeft:
		return -1, 0
	case gamepad.DPadRight:
		return 1, 0
	}
	return 0, 0
}

func eventPhase(ev gamepad.Event) protocol.Phase {
	if ev.Kind == gamepad.Pressed {
		return protocol.PhaseDown
	}
	return protocol.PhaseUp
}

// handleOverlay maps a discrete event while the overlay is open
func (e *Engine) handleOverlay(ev gamepad.Event, b Bindings) {
	down := ev.Kind == gamepad.Pressed

	switch {
	case ev.Button == b.Menu:
		if down {
			e.CloseOverlay()
		}
	case ev.Button == b.Shift:
		if down {
			e.emit(overlay.NavShift{})
		}
	case ev.Button == b.Back:
		if !down {
			e.CloseOverlay()
		}
	case ev.Button == b.Confirm:
		e.emit(overlay.NavSelect{Phase: eventPhase(ev), At: e.now()})
	case ev.Button.IsDPad():
		dx, dy := dpadVector(ev.Button)
		e.emitMove(dx, dy, eventPhase(ev))
	}
}

// updateNavStick turns the left stick of every controller into traversal steps
func (e *Engine) updateNavStick(ps *pollState, threshold float64) {
	for _, id := range e.source.Controllers() {
		s := ps.stick(id)
		x := e.source.Value(id, gamepad.LeftX)
		y := e.source.Value(id, gamepad.LeftY)
		for _, st := range s.update(x, y, threshold) {
			e.emitMove(st.dx, st.dy, st.phase)
		}
	}
}

func (e *Engine) emitMove(dx, dy int, phase protocol.Phase) {
	e.emit(overlay.NavMove{
		Dx:        dx,
		Dy:        dy,
		Phase:     phase,
		Source:    navSource,
		Magnitude: 1.0,
		At:        e.now(),
	})
}
