package engine

import (
	"log"

	"padkey/internal/gamepad"
	"padkey/internal/input"
)

var arrowKeys = map[gamepad.Button]input.Key{
	gamepad.DPadUp:    input.KeyArrowUp,
	gamepad.DPadDown:  input.KeyArrowDown,
	gamepad.DPadLeft:  input.KeyArrowLeft,
	gamepad.DPadRight: input.KeyArrowRight,
}

// handleSystem maps a discrete event to synthetic input while the overlay is closed
func (e *Engine) handleSystem(ev gamepad.Event, b Bindings) {
	down := ev.Kind == gamepad.Pressed

	switch {
	case ev.Button == b.Menu:
		if down {
			e.OpenOverlay()
		}
	case ev.Button == b.LeftClick:
		e.report("left click", e.out.MouseButton(input.ButtonLeft, down))
	case ev.Button == b.RightClick:
		e.report("right click", e.out.MouseButton(input.ButtonRight, down))
	case ev.Button.IsDPad():
		k := arrowKeys[ev.Button]
		e.report(k.String(), e.out.Key(k, down))
	}
}

// updatePointer drives the pointer from the left stick and the wheel from the
// right stick of every controller
func (e *Engine) updatePointer(ps *pollState, opts *Options) {
	for _, id := range e.source.Controllers() {
		m := ps.motionFor(id)

		dx, dy := m.pointer.Step(opts.Pointer, e.source.Value(id, gamepad.LeftX), e.source.Value(id, gamepad.LeftY))
		if dx != 0 || dy != 0 {
			e.report("pointer move", e.out.MouseMove(dx, dy))
		}

		sx, sy := m.scroll.Step(opts.Scroll, e.source.Value(id, gamepad.RightX), e.source.Value(id, gamepad.RightY))
		if sx != 0 {
			e.report("horizontal scroll", e.out.Scroll(sx, true))
		}
		if sy != 0 {
			e.report("scroll", e.out.Scroll(sy, false))
		}
	}
}

// report logs a failed injection. The loop never stops for one.
func (e *Engine) report(what string, err error) {
	if err != nil {
		log.Printf("Engine: %s failed: %v", what, err)
	}
}
