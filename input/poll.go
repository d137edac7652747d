package input

import (
	"fmt"
	"slices"
)

// Snapshot is the polled state of one host joystick slot.
type Snapshot struct {
	Present bool
	Name    string
	GUID    string
	Axes    []int16
	Buttons []bool
	Hats    []int
}

// DevicePath is the stable path of a joystick: its GUID and the host slot it
// was found in, so two identical pads stay distinguishable.
func DevicePath(guid string, slot int) string {
	return fmt.Sprintf("%s:%d", guid, slot)
}

type polledSlot struct {
	connected bool
	id        int32
	last      Snapshot
}

// Poller turns successive joystick snapshots into events. Every connection
// gets a new instance id.
type Poller struct {
	next  int32
	slots []polledSlot
}

// NewPoller creates a poller for the given number of host slots.
func NewPoller(slots int) *Poller {
	return &Poller{slots: make([]polledSlot, slots)}
}

// Update compares s with the previous snapshot of slot and returns the
// events describing the change. A new connection is reported before any
// input from it.
func (p *Poller) Update(slot int, s Snapshot) []Event {
	ps := &p.slots[slot]
	var events []Event
	if !s.Present {
		if ps.connected {
			events = append(events, DeviceRemoved{ID: ps.id})
			*ps = polledSlot{}
		}
		return events
	}
	if !ps.connected {
		ps.connected = true
		ps.id = p.next
		ps.last = Snapshot{}
		p.next++
		events = append(events, DeviceAdded{ID: ps.id, Path: DevicePath(s.GUID, slot), Name: s.Name, GUID: s.GUID})
	}

	for i, v := range s.Axes {
		if v != at(ps.last.Axes, i) {
			events = append(events, AxisMotion{ID: ps.id, Axis: i, Value: v})
		}
	}
	for i, v := range s.Buttons {
		if v != at(ps.last.Buttons, i) {
			events = append(events, ButtonChange{ID: ps.id, Button: i, Pressed: v})
		}
	}
	for i, v := range s.Hats {
		if v != at(ps.last.Hats, i) {
			events = append(events, HatMotion{ID: ps.id, Hat: i, Value: v})
		}
	}

	ps.last = Snapshot{
		Present: true,
		Name:    s.Name,
		GUID:    s.GUID,
		Axes:    slices.Clone(s.Axes),
		Buttons: slices.Clone(s.Buttons),
		Hats:    slices.Clone(s.Hats),
	}
	return events
}

func at[T any](s []T, i int) T {
	var zero T
	if i >= len(s) {
		return zero
	}
	return s[i]
}
