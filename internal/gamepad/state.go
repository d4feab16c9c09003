package gamepad

// SDL hat bits
const (
	HatUp    uint8 = 0x01
	HatRight uint8 = 0x02
	HatDown  uint8 = 0x04
	HatLeft  uint8 = 0x08

	// Analog triggers count as pressed above triggerPress and released below triggerRelease.
	triggerPress   = 0.5
	triggerRelease = 0.3
)

var hatButtons = []struct {
	bit    uint8
	button Button
}{
	{HatUp, DPadUp},
	{HatDown, DPadDown},
	{HatLeft, DPadLeft},
	{HatRight, DPadRight},
}

// HatEvents diffs two hat readings into D-pad releases followed by presses.
func HatEvents(id ControllerID, prev, cur uint8) []Event {
	var events []Event
	for _, hb := range hatButtons {
		if prev&hb.bit != 0 && cur&hb.bit == 0 {
			events = append(events, Event{Controller: id, Kind: Released, Button: hb.button})
		}
	}
	for _, hb := range hatButtons {
		if prev&hb.bit == 0 && cur&hb.bit != 0 {
			events = append(events, Event{Controller: id, Kind: Pressed, Button: hb.button})
		}
	}
	return events
}

// TriggerPressed applies press/release hysteresis to an analog trigger reading.
func TriggerPressed(pressed bool, v float64) bool {
	if pressed {
		return v >= triggerRelease
	}
	return v > triggerPress
}

// ButtonSet records which buttons are down on each controller
type ButtonSet map[ControllerID]*[buttonCount]bool

func (s ButtonSet) Apply(ev Event) {
	if ev.Button <= ButtonNone || ev.Button >= buttonCount {
		return
	}
	st, ok := s[ev.Controller]
	if !ok {
		st = new([buttonCount]bool)
		s[ev.Controller] = st
	}
	st[ev.Button] = ev.Kind == Pressed
}

func (s ButtonSet) Held(id ControllerID, b Button) bool {
	if b <= ButtonNone || b >= buttonCount {
		return false
	}
	st, ok := s[id]
	return ok && st[b]
}

// ReleaseAll returns a release event for every button still down on id.
func (s ButtonSet) ReleaseAll(id ControllerID) []Event {
	st, ok := s[id]
	if !ok {
		return nil
	}
	var events []Event
	for b := South; b < buttonCount; b++ {
		if st[b] {
			events = append(events, Event{Controller: id, Kind: Released, Button: b})
		}
	}
	return events
}

// Queue is a FIFO of pending events
type Queue struct {
	items []Event
}

func (q *Queue) Push(events ...Event) {
	q.items = append(q.items, events...)
}

func (q *Queue) Pop() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	ev := q.items[0]
	q.items[0] = Event{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return ev, true
}

func (q *Queue) Len() int {
	return len(q.items)
}
