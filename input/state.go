package input

import "github.com/golang/glog"

// Unbound is the port instance id sentinel.
const Unbound int32 = -1

// AxisDeadZone is the absolute axis value a position must exceed to count
// as pressed.
const AxisDeadZone = 16000

// Sink receives gamepad state changes. The console gamepad controller
// implements it.
type Sink interface {
	IsGamepadConnected(port int) bool
	ProcessConnectionChange(port int, connected bool)
	ProcessDirectionChange(port int, d Direction, pressed bool)
	ProcessButtonChange(port int, b Button, pressed bool)
}

// Device is a connected joystick.
type Device struct {
	ID   int32
	Path string
	Name string
	GUID string
}

// State holds the connected joysticks, the port bindings and the mapping
// profile. It is owned by the host loop.
type State struct {
	Devices   map[int32]Device
	PortIDs   [Ports]int32
	PortPaths [Ports]string
	Mapping   Mapping
}

// NewState creates a state with no connected devices. paths are the
// expected device paths of each port.
func NewState(paths [Ports]string, mapping Mapping) *State {
	s := &State{
		Devices:   make(map[int32]Device),
		PortPaths: paths,
		Mapping:   mapping,
	}
	for i := range s.PortIDs {
		s.PortIDs[i] = Unbound
	}
	return s
}

// PortFromPath returns the port expecting the path, or -1.
func (s *State) PortFromPath(path string) int {
	for port, p := range s.PortPaths {
		if p == path {
			return port
		}
	}
	return -1
}

// PortFromInstance returns the port bound to the instance id, or -1.
func (s *State) PortFromInstance(id int32) int {
	for port, bound := range s.PortIDs {
		if bound == id {
			return port
		}
	}
	return -1
}

// ProcessEvent applies a joystick event, forwarding the resulting gamepad
// changes to sink.
func (s *State) ProcessEvent(ev Event, sink Sink) {
	switch e := ev.(type) {
	case DeviceAdded:
		s.addDevice(e, sink)
	case DeviceRemoved:
		s.removeDevice(e, sink)
	case AxisMotion:
		if port, ok := s.connectedPort(e.ID, sink); ok {
			s.axisMotion(port, e, sink)
		}
	case ButtonChange:
		if port, ok := s.connectedPort(e.ID, sink); ok {
			s.buttonChange(port, e, sink)
		}
	case HatMotion:
		if port, ok := s.connectedPort(e.ID, sink); ok {
			s.hatMotion(port, e, sink)
		}
	}
}

func (s *State) addDevice(e DeviceAdded, sink Sink) {
	s.Devices[e.ID] = Device(e)
	for port, path := range s.PortPaths {
		if path != "" && path == e.Path {
			s.PortIDs[port] = e.ID
			sink.ProcessConnectionChange(port, true)
			glog.Infof("Joystick %q bound to gamepad %d", e.Name, port+1)
			return
		}
	}
	glog.V(1).Infof("Joystick %q (%s) matches no gamepad port", e.Name, e.Path)
}

func (s *State) removeDevice(e DeviceRemoved, sink Sink) {
	delete(s.Devices, e.ID)
	for port, id := range s.PortIDs {
		if id == e.ID {
			s.PortIDs[port] = Unbound
			sink.ProcessConnectionChange(port, false)
			glog.Infof("Joystick removed from gamepad %d", port+1)
			return
		}
	}
}

func (s *State) connectedPort(id int32, sink Sink) (int, bool) {
	port := s.PortFromInstance(id)
	if port < 0 {
		glog.V(2).Infof("Ignoring event from unbound joystick %d", id)
		return -1, false
	}
	return port, sink.IsGamepadConnected(port)
}

func (s *State) axisMotion(port int, e AxisMotion, sink Sink) {
	positive := e.Value > AxisDeadZone
	negative := e.Value < -AxisDeadZone
	pressed := func(c Control) bool {
		if c.AxisPositive {
			return positive
		}
		return negative
	}
	for d, c := range s.Mapping.Directions {
		if c.IsAxis && c.AxisIndex == e.Axis {
			sink.ProcessDirectionChange(port, Direction(d), pressed(c))
		}
	}
	for b, c := range s.Mapping.Buttons {
		if c.IsAxis && c.AxisIndex == e.Axis {
			sink.ProcessButtonChange(port, Button(b), pressed(c))
		}
	}
}

func (s *State) buttonChange(port int, e ButtonChange, sink Sink) {
	// Releases match on the button index alone; presses skip axis controls.
	for d, c := range s.Mapping.Directions {
		if (!e.Pressed || !c.IsAxis) && c.ButtonIndex == e.Button {
			sink.ProcessDirectionChange(port, Direction(d), e.Pressed)
		}
	}
	for b, c := range s.Mapping.Buttons {
		if (!e.Pressed || !c.IsAxis) && c.ButtonIndex == e.Button {
			sink.ProcessButtonChange(port, Button(b), e.Pressed)
		}
	}
}

func (s *State) hatMotion(port int, e HatMotion, sink Sink) {
	for d, c := range s.Mapping.Directions {
		if c.IsHat && c.HatIndex == e.Hat {
			sink.ProcessDirectionChange(port, Direction(d), e.Value&c.HatDirection != 0)
		}
	}
	// Buttons match on !IsHat, so a button bound with HatControl never
	// fires here.
	for b, c := range s.Mapping.Buttons {
		if !c.IsHat && c.HatIndex == e.Hat {
			sink.ProcessButtonChange(port, Button(b), e.Value&c.HatDirection != 0)
		}
	}
}
