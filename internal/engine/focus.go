package engine

import (
	"errors"
	"log"
	"time"

	"padkey/internal/input"
	"padkey/internal/state"
)

// Guardian keeps synthetic input landing in the application the user was
// working in while the overlay window is on screen. On platforms without a
// foreground window concept every method is a no-op.
type Guardian struct {
	state  *state.Activation
	sink   input.Sink
	settle func() time.Duration
	sleep  func(time.Duration)
}

// NewGuardian creates a guardian. settle is read on every restore so tuning
// changes apply immediately.
func NewGuardian(st *state.Activation, sink input.Sink, settle func() time.Duration) *Guardian {
	return &Guardian{
		state:  st,
		sink:   sink,
		settle: settle,
		sleep:  time.Sleep,
	}
}

func (g *Guardian) foreground() (input.Window, bool) {
	fg, err := g.sink.Foreground()
	if err != nil {
		if !errors.Is(err, input.ErrNoForeground) {
			log.Printf("Engine: foreground query failed: %v", err)
		}
		return 0, false
	}
	return fg, true
}

// Capture records the current foreground window as the target. It is called
// when the overlay opens, before the overlay window can take focus.
func (g *Guardian) Capture() {
	fg, ok := g.foreground()
	if !ok {
		return
	}
	if g.state.CaptureTarget(fg) {
		log.Printf("Engine: target window %#x", fg)
	}
}

// Before runs ahead of every injection. If the overlay window holds focus
// the target is brought back and the OS is given a moment to settle; if the
// user moved to another window that window becomes the target.
func (g *Guardian) Before() {
	fg, ok := g.foreground()
	if !ok {
		return
	}
	restore := g.state.ReconcileFocus(fg)
	if restore == 0 {
		return
	}
	if err := g.sink.SetForeground(restore); err != nil {
		if !errors.Is(err, input.ErrNoForeground) {
			log.Printf("Engine: failed to restore focus to %#x: %v", restore, err)
		}
		return
	}
	if d := g.settle(); d > 0 {
		g.sleep(d)
	}
}

// guardedSink runs the guardian before each injecting call
type guardedSink struct {
	input.Sink
	g *Guardian
}

func (s guardedSink) Key(k input.Key, down bool) error {
	s.g.Before()
	return s.Sink.Key(k, down)
}

func (s guardedSink) ScanCode(code uint16, down bool) error {
	s.g.Before()
	return s.Sink.ScanCode(code, down)
}

func (s guardedSink) Text(text string) error {
	s.g.Before()
	return s.Sink.Text(text)
}

func (s guardedSink) MouseMove(dx, dy int) error {
	s.g.Before()
	return s.Sink.MouseMove(dx, dy)
}

func (s guardedSink) MouseButton(b input.MouseButton, down bool) error {
	s.g.Before()
	return s.Sink.MouseButton(b, down)
}

func (s guardedSink) Scroll(amount int, horizontal bool) error {
	s.g.Before()
	return s.Sink.Scroll(amount, horizontal)
}
