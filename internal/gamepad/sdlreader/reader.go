// Package sdlreader implements gamepad.Source on top of the SDL3 joystick API.
package sdlreader

import (
	"fmt"
	"log"

	"padkey/internal/gamepad"

	"github.com/jupiterrider/purego-sdl3/sdl"
)

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	info     gamepad.Info
	hat      uint8
	triggers [2]bool // lt, rt as seen by the pump
}

// Reader reads controllers through the SDL3 joystick API. It implements
// gamepad.Source and, like SDL itself, must be used from a single locked OS thread.
type Reader struct {
	joysticks map[gamepad.ControllerID]*joystickInfo
	order     []gamepad.ControllerID
	queue     gamepad.Queue
	pumped    gamepad.ButtonSet // button state as enqueued
	held      gamepad.ButtonSet // button state as handed out by Next
}

var _ gamepad.Source = (*Reader)(nil)

// NewReader creates a reader; call Open on the polling thread before use.
func NewReader() *Reader {
	return &Reader{
		joysticks: make(map[gamepad.ControllerID]*joystickInfo),
		pumped:    make(gamepad.ButtonSet),
		held:      make(gamepad.ButtonSet),
	}
}

// Open initializes the SDL joystick subsystem and opens connected controllers.
func (r *Reader) Open() error {
	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("%w: SDL init: %s", gamepad.ErrBackendUnavailable, sdl.GetError())
	}
	log.Println("Gamepad: SDL3 joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}
	return nil
}

// Close closes all controllers and shuts SDL down.
func (r *Reader) Close() {
	for id, js := range r.joysticks {
		sdl.CloseJoystick(js.joystick)
		delete(r.joysticks, id)
	}
	r.order = nil
	sdl.Quit()
}

// Next returns the oldest pending event, pumping SDL when nothing is queued.
func (r *Reader) Next() (gamepad.Event, bool) {
	if r.queue.Len() == 0 {
		r.pump()
	}
	ev, ok := r.queue.Pop()
	if ok {
		r.held.Apply(ev)
	}
	return ev, ok
}

// Controllers lists connected controllers in connection order
func (r *Reader) Controllers() []gamepad.ControllerID {
	ids := make([]gamepad.ControllerID, len(r.order))
	copy(ids, r.order)
	return ids
}

// Info returns the description of every connected controller
func (r *Reader) Info() []gamepad.Info {
	infos := make([]gamepad.Info, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, r.joysticks[id].info)
	}
	return infos
}

// Held reports whether b is down as of the last event returned by Next
func (r *Reader) Held(id gamepad.ControllerID, b gamepad.Button) bool {
	return r.held.Held(id, b)
}

// Value reads the current value of a logical axis
func (r *Reader) Value(id gamepad.ControllerID, a gamepad.Axis) float64 {
	js, ok := r.joysticks[id]
	if !ok {
		return 0
	}
	am, ok := js.mapping.Axis(a)
	if !ok || am.Index >= sdl.GetNumJoystickAxes(js.joystick) {
		return 0
	}
	return am.Normalize(sdl.GetJoystickAxis(js.joystick, am.Index))
}

func (r *Reader) enqueue(events ...gamepad.Event) {
	for _, ev := range events {
		r.pumped.Apply(ev)
	}
	r.queue.Push(events...)
}

func (r *Reader) pump() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)

		case sdl.EventJoystickRemoved:
			r.removeJoystick(gamepad.ControllerID(event.JDevice().Which))

		case sdl.EventJoystickButtonDown, sdl.EventJoystickButtonUp:
			be := event.JButton()
			id := gamepad.ControllerID(be.Which)
			js, ok := r.joysticks[id]
			if !ok {
				continue
			}
			b, ok := js.mapping.Button(int32(be.Button))
			if !ok {
				continue
			}
			kind := gamepad.Released
			if event.Type() == sdl.EventJoystickButtonDown {
				kind = gamepad.Pressed
			}
			r.enqueue(gamepad.Event{Controller: id, Kind: kind, Button: b})

		case sdl.EventJoystickHatMotion:
			he := event.JHat()
			id := gamepad.ControllerID(he.Which)
			js, ok := r.joysticks[id]
			if !ok || he.Hat != 0 || !js.mapping.HasHat {
				continue
			}
			r.enqueue(gamepad.HatEvents(id, js.hat, he.Value)...)
			js.hat = he.Value

		case sdl.EventJoystickAxisMotion:
			ae := event.JAxis()
			id := gamepad.ControllerID(ae.Which)
			js, ok := r.joysticks[id]
			if !ok {
				continue
			}
			am, ok := js.mapping.AxisAt(int32(ae.Axis))
			if !ok || !am.IsTrigger() {
				continue
			}
			r.triggerMotion(id, js, am, ae.Value)
		}
	}
}

func (r *Reader) triggerMotion(id gamepad.ControllerID, js *joystickInfo, am gamepad.AxisMapping, raw int16) {
	slot, button := 0, gamepad.LT
	if am.Target == gamepad.RightTrigger {
		slot, button = 1, gamepad.RT
	}
	was := js.triggers[slot]
	now := gamepad.TriggerPressed(was, am.Normalize(raw))
	if now == was {
		return
	}
	js.triggers[slot] = now
	kind := gamepad.Released
	if now {
		kind = gamepad.Pressed
	}
	r.enqueue(gamepad.Event{Controller: id, Kind: kind, Button: button})
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[gamepad.ControllerID(instanceID)]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Gamepad: failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	id := gamepad.ControllerID(sdl.GetJoystickID(js))
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	mapping := gamepad.GetMapping(vendorID, productID)
	info := &joystickInfo{
		joystick: js,
		mapping:  mapping,
		info: gamepad.Info{
			ID:      id,
			Name:    sdl.GetJoystickName(js),
			Mapping: mapping.Name,
			Vendor:  vendorID,
			Product: productID,
		},
	}
	r.joysticks[id] = info
	r.order = append(r.order, id)

	log.Printf("Gamepad: connected %s (VID=%04X PID=%04X) mapping=%s axes=%d buttons=%d hats=%d",
		info.info.Name, vendorID, productID, mapping.Name,
		sdl.GetNumJoystickAxes(js), sdl.GetNumJoystickButtons(js), sdl.GetNumJoystickHats(js))
}

// removeJoystick synthesizes releases for anything still held so no mapped
// action stays pressed after a disconnect.
func (r *Reader) removeJoystick(id gamepad.ControllerID) {
	info, exists := r.joysticks[id]
	if !exists {
		return
	}

	log.Printf("Gamepad: disconnected %s", info.info.Name)
	r.enqueue(r.pumped.ReleaseAll(id)...)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, id)
	delete(r.pumped, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
