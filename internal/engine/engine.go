// Package engine turns controller input into synthetic mouse and keyboard
// input, or into overlay navigation while the on-screen keyboard is open.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"padkey/internal/gamepad"
	"padkey/internal/input"
	"padkey/internal/overlay"
	"padkey/internal/state"
)

// ErrUnknownKey is returned by SendKey for a key or modifier with no mapping
var ErrUnknownKey = errors.New("engine: unknown key")

type mode int

const (
	modeInactive mode = iota
	modeSystem
	modeOverlay
)

func modeOf(active, overlayOpen bool) mode {
	switch {
	case !active:
		return modeInactive
	case overlayOpen:
		return modeOverlay
	}
	return modeSystem
}

// Engine owns the polling loop and the operations the tray and overlay invoke.
type Engine struct {
	state    *state.Activation
	source   gamepad.Source
	sink     input.Sink
	out      input.Sink // sink behind the guardian
	guardian *Guardian
	notify   overlay.Notifier
	opts     atomic.Pointer[Options]
	now      func() time.Time
}

var _ overlay.Commands = (*Engine)(nil)

// New creates an engine reading from src and injecting into sink
func New(st *state.Activation, src gamepad.Source, sink input.Sink, opts Options) (*Engine, error) {
	e := &Engine{
		state:  st,
		source: src,
		sink:   sink,
		notify: overlay.Discard,
		now:    time.Now,
	}
	if err := e.SetOptions(opts); err != nil {
		return nil, err
	}
	e.guardian = NewGuardian(st, sink, func() time.Duration { return e.options().FocusSettle })
	e.out = guardedSink{Sink: sink, g: e.guardian}
	return e, nil
}

// SetNotifier sets where overlay events go. Call it before Run and before
// any command is dispatched.
func (e *Engine) SetNotifier(n overlay.Notifier) {
	if n == nil {
		n = overlay.Discard
	}
	e.notify = n
}

// SetOptions replaces the tuning; the loop picks it up on its next tick
func (e *Engine) SetOptions(o Options) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid engine options: %w", err)
	}
	e.opts.Store(&o)
	return nil
}

func (e *Engine) options() *Options {
	return e.opts.Load()
}

func (e *Engine) emit(ev overlay.Event) {
	e.notify.Notify(ev)
}

// Run opens the controller source and polls it until ctx is cancelled. The
// calling goroutine is locked to its OS thread for the lifetime of the loop.
// If the source cannot be opened, Run disables virtualization and returns
// the error.
func (e *Engine) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.source.Open(); err != nil {
		log.Printf("Engine: controller backend unavailable: %v", err)
		e.Disable()
		return err
	}
	defer e.source.Close()

	log.Printf("Engine: polling every %v", e.options().PollInterval)

	ps := newPollState()
	timer := time.NewTimer(e.options().PollInterval)
	defer timer.Stop()

	for {
		e.tick(ps)

		timer.Reset(e.options().PollInterval)
		select {
		case <-ctx.Done():
			log.Println("Engine: polling stopped")
			return nil
		case <-timer.C:
		}
	}
}

// tick runs one iteration of the loop
func (e *Engine) tick(ps *pollState) {
	opts := e.options()
	b := opts.Bindings

	var batch []gamepad.Event
	for {
		ev, ok := e.source.Next()
		if !ok {
			break
		}
		batch = append(batch, ev)
	}
	suppressed := comboSuppressed(batch, b.Toggle, e.source.Held)
	for i, ev := range batch {
		if suppressed[i] {
			continue
		}
		m := modeOf(e.state.Mode())
		e.enterMode(ps, m, b)
		e.dispatch(ps, m, ev, b)
	}

	combo := false
	for _, id := range e.source.Controllers() {
		if e.source.Held(id, b.Toggle[0]) && e.source.Held(id, b.Toggle[1]) {
			combo = true
			break
		}
	}
	e.applyTransition(e.state.ApplyCombo(combo, e.now()))

	m := modeOf(e.state.Mode())
	e.enterMode(ps, m, b)
	e.prune(ps, e.source.Controllers(), b)
	switch m {
	case modeSystem:
		e.updatePointer(ps, opts)
	case modeOverlay:
		e.updateNavStick(ps, opts.NavThreshold)
	}
}

// dispatch hands one event to the mapper for mode m. A release is only
// delivered when its press was delivered in the same mode; presses still
// held when the mode changes are released by enterMode.
func (e *Engine) dispatch(ps *pollState, m mode, ev gamepad.Event, b Bindings) {
	if m == modeInactive {
		return
	}
	k := pressKey{controller: ev.Controller, button: ev.Button}
	if ev.Kind == gamepad.Pressed {
		ps.press(k)
	} else if !ps.release(k) {
		return
	}

	switch m {
	case modeSystem:
		e.handleSystem(ev, b)
	case modeOverlay:
		e.handleOverlay(ev, b)
	}
}

// enterMode switches the loop to mode m. Everything the previous mode still
// holds down is let go first: mouse buttons and arrow keys in system mode,
// traversal and select in overlay mode.
func (e *Engine) enterMode(ps *pollState, m mode, b Bindings) {
	if m == ps.mode {
		return
	}
	e.releaseHeld(ps, b, func(gamepad.ControllerID) bool { return false })
	ps.mode = m
	ps.pressed = ps.pressed[:0]
	clear(ps.motion)
	clear(ps.sticks)
}

// prune forgets controllers that are no longer connected, releasing what
// they held
func (e *Engine) prune(ps *pollState, ids []gamepad.ControllerID, b Bindings) {
	live := make(map[gamepad.ControllerID]bool, len(ids))
	for _, id := range ids {
		live[id] = true
	}
	keep := func(id gamepad.ControllerID) bool { return live[id] }

	e.releaseHeld(ps, b, keep)
	ps.pressed = slices.DeleteFunc(ps.pressed, func(k pressKey) bool { return !keep(k.controller) })
	for id := range ps.motion {
		if !keep(id) {
			delete(ps.motion, id)
		}
	}
	for id := range ps.sticks {
		if !keep(id) {
			delete(ps.sticks, id)
		}
	}
}

// releaseHeld emits the release of every press and stick direction held in
// the current mode by a controller keep rejects
func (e *Engine) releaseHeld(ps *pollState, b Bindings, keep func(gamepad.ControllerID) bool) {
	for _, k := range ps.pressed {
		if keep(k.controller) {
			continue
		}
		ev := gamepad.Event{Controller: k.controller, Kind: gamepad.Released, Button: k.button}
		switch ps.mode {
		case modeSystem:
			e.handleSystem(ev, b)
		case modeOverlay:
			// back acts on release; only held output is let go here
			if k.button == b.Confirm || k.button.IsDPad() {
				e.handleOverlay(ev, b)
			}
		}
	}

	if ps.mode != modeOverlay {
		return
	}
	for _, id := range slices.Sorted(maps.Keys(ps.sticks)) {
		if keep(id) {
			continue
		}
		for _, st := range ps.sticks[id].release() {
			e.emitMove(st.dx, st.dy, st.phase)
		}
	}
}

// comboSuppressed marks the presses in batch that belong to the toggle
// combo rather than to their own mapped action: a press of either toggle
// button while the other one is held on the same controller, or that is
// followed later in the batch by a press of the other one while it is still
// down. held reports state after the whole batch has been consumed.
func comboSuppressed(batch []gamepad.Event, toggle [2]gamepad.Button, held func(gamepad.ControllerID, gamepad.Button) bool) []bool {
	out := make([]bool, len(batch))

	// heldAfter is the state of b on c once batch[i] has been processed
	heldAfter := func(i int, c gamepad.ControllerID, b gamepad.Button) bool {
		for j := i + 1; j < len(batch); j++ {
			if batch[j].Controller == c && batch[j].Button == b {
				return batch[j].Kind == gamepad.Released
			}
		}
		return held(c, b)
	}

	for i, ev := range batch {
		if ev.Kind != gamepad.Pressed {
			continue
		}
		var other gamepad.Button
		switch ev.Button {
		case toggle[0]:
			other = toggle[1]
		case toggle[1]:
			other = toggle[0]
		default:
			continue
		}

		if heldAfter(i, ev.Controller, other) {
			out[i] = true
			continue
		}
		for j := i + 1; j < len(batch); j++ {
			next := batch[j]
			if next.Controller != ev.Controller {
				continue
			}
			if next.Button == ev.Button && next.Kind == gamepad.Released {
				break
			}
			if next.Button == other && next.Kind == gamepad.Pressed {
				out[i] = true
				break
			}
		}
	}
	return out
}

// pollState is the loop's private per-tick state. It is reset whenever the
// mode changes so no motion, direction or press carries across modes.
type pollState struct {
	mode    mode
	pressed []pressKey // delivered presses not yet released, in press order
	motion  map[gamepad.ControllerID]*motionState
	sticks  map[gamepad.ControllerID]*stickState
}

type pressKey struct {
	controller gamepad.ControllerID
	button     gamepad.Button
}

type motionState struct {
	pointer Carry
	scroll  Carry
}

func newPollState() *pollState {
	return &pollState{
		motion: make(map[gamepad.ControllerID]*motionState),
		sticks: make(map[gamepad.ControllerID]*stickState),
	}
}

func (ps *pollState) press(k pressKey) {
	if !slices.Contains(ps.pressed, k) {
		ps.pressed = append(ps.pressed, k)
	}
}

// release drops k and reports whether it was pressed
func (ps *pollState) release(k pressKey) bool {
	i := slices.Index(ps.pressed, k)
	if i < 0 {
		return false
	}
	ps.pressed = slices.Delete(ps.pressed, i, i+1)
	return true
}

func (ps *pollState) motionFor(id gamepad.ControllerID) *motionState {
	m, ok := ps.motion[id]
	if !ok {
		m = &motionState{}
		ps.motion[id] = m
	}
	return m
}

func (ps *pollState) stick(id gamepad.ControllerID) *stickState {
	s, ok := ps.sticks[id]
	if !ok {
		s = &stickState{}
		ps.sticks[id] = s
	}
	return s
}
