// Package input binds physical joysticks to the four console gamepad ports
// and translates their events into gamepad direction and button changes.
package input

// Ports is the number of console gamepad ports.
const Ports = 4

// Direction is a gamepad direction.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down

	directions
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "unknown"
}

// Button is a gamepad button.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonL
	ButtonR
	ButtonStart

	buttons
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "a"
	case ButtonB:
		return "b"
	case ButtonX:
		return "x"
	case ButtonY:
		return "y"
	case ButtonL:
		return "l"
	case ButtonR:
		return "r"
	case ButtonStart:
		return "start"
	}
	return "unknown"
}

// Hat direction bits, as reported by hat motion events.
const (
	HatCentered = 0
	HatUp       = 1
	HatRight    = 2
	HatDown     = 4
	HatLeft     = 8
)

// Control is the physical binding of one gamepad direction or button:
// a button index, an axis index with a sign, or a hat index with a
// direction bit. Use Unmapped, ButtonControl, AxisControl and HatControl
// to build one.
type Control struct {
	IsAxis bool
	IsHat  bool

	ButtonIndex int

	AxisIndex    int
	AxisPositive bool

	HatIndex     int
	HatDirection int
}

// Unmapped returns a control bound to nothing.
func Unmapped() Control {
	return Control{ButtonIndex: -1, AxisIndex: -1, AxisPositive: true, HatIndex: -1, HatDirection: HatCentered}
}

// ButtonControl binds a joystick button.
func ButtonControl(index int) Control {
	c := Unmapped()
	c.ButtonIndex = index
	return c
}

// AxisControl binds one sign of a joystick axis.
func AxisControl(index int, positive bool) Control {
	c := Unmapped()
	c.IsAxis = true
	c.AxisIndex = index
	c.AxisPositive = positive
	return c
}

// HatControl binds one direction bit of a joystick hat.
func HatControl(index, direction int) Control {
	c := Unmapped()
	c.IsHat = true
	c.HatIndex = index
	c.HatDirection = direction
	return c
}

// Mapping is a control profile. The same profile serves every port.
type Mapping struct {
	GUID     string
	Name     string
	Nickname string

	Directions [directions]Control
	Buttons    [buttons]Control
}

// DefaultMapping uses the first two axes for directions and the first
// seven buttons for A, B, X, Y, L, R and Start.
func DefaultMapping() Mapping {
	m := Mapping{Name: "Default", Nickname: "Default"}
	m.Directions[Left] = AxisControl(0, false)
	m.Directions[Right] = AxisControl(0, true)
	m.Directions[Up] = AxisControl(1, false)
	m.Directions[Down] = AxisControl(1, true)
	for b := ButtonA; b < buttons; b++ {
		m.Buttons[b] = ButtonControl(int(b))
	}
	return m
}

// EmptyMapping has every control unmapped.
func EmptyMapping() Mapping {
	var m Mapping
	for i := range m.Directions {
		m.Directions[i] = Unmapped()
	}
	for i := range m.Buttons {
		m.Buttons[i] = Unmapped()
	}
	return m
}
