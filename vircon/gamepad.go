package vircon

import (
	"math"

	"github.com/golang/glog"

	"github.com/jyane/vircon/input"
)

// Gamepad controller local ports.
const (
	GamepadPortSelectedGamepad = iota
	GamepadPortConnected
	GamepadPortLeft
	GamepadPortRight
	GamepadPortUp
	GamepadPortDown
	GamepadPortButtonStart
	GamepadPortButtonA
	GamepadPortButtonB
	GamepadPortButtonX
	GamepadPortButtonY
	GamepadPortButtonL
	GamepadPortButtonR

	gamepadPorts
)

// Port order of the buttons after Start.
var gamepadButtonPorts = [...]input.Button{
	input.ButtonA,
	input.ButtonB,
	input.ButtonX,
	input.ButtonY,
	input.ButtonL,
	input.ButtonR,
}

// control tracks one direction or button. Frames counts how long the
// control has been held (positive) or released (negative).
type control struct {
	pressed bool
	frames  int32
}

func (c *control) advance() {
	switch {
	case c.pressed && c.frames < 0:
		c.frames = 1
	case !c.pressed && c.frames > 0:
		c.frames = -1
	case c.pressed && c.frames < math.MaxInt32:
		c.frames++
	case !c.pressed && c.frames > math.MinInt32:
		c.frames--
	}
}

type gamepad struct {
	connected  bool
	directions [4]control
	buttons    [7]control
}

func (g *gamepad) release() {
	for i := range g.directions {
		g.directions[i] = control{frames: -1}
	}
	for i := range g.buttons {
		g.buttons[i] = control{frames: -1}
	}
}

// GamepadController exposes the four gamepads on the control bus. Host
// input arrives through the input.Sink methods and becomes visible to the
// CPU on the next frame.
type GamepadController struct {
	selected int32
	gamepads [MaximumGamepads]gamepad
}

var _ input.Sink = (*GamepadController)(nil)

// NewGamepadController creates a controller with every gamepad disconnected.
func NewGamepadController() *GamepadController {
	c := &GamepadController{}
	c.Reset()
	return c
}

// ChangeFrame advances the held and released frame counters.
func (c *GamepadController) ChangeFrame() {
	for i := range c.gamepads {
		g := &c.gamepads[i]
		for j := range g.directions {
			g.directions[j].advance()
		}
		for j := range g.buttons {
			g.buttons[j].advance()
		}
	}
}

// Reset releases every control. Connections are host state and survive.
func (c *GamepadController) Reset() {
	c.selected = 0
	for i := range c.gamepads {
		c.gamepads[i].release()
	}
}

func validGamepad(port int) bool {
	return port >= 0 && port < MaximumGamepads
}

// IsGamepadConnected reports whether a gamepad is plugged at the port.
func (c *GamepadController) IsGamepadConnected(port int) bool {
	return validGamepad(port) && c.gamepads[port].connected
}

// ProcessConnectionChange plugs or unplugs a gamepad. Unplugging releases
// all of its controls.
func (c *GamepadController) ProcessConnectionChange(port int, connected bool) {
	if !validGamepad(port) {
		return
	}
	c.gamepads[port].connected = connected
	if !connected {
		c.gamepads[port].release()
	}
	glog.V(1).Infof("Gamepad %d connected=%v", port+1, connected)
}

// ProcessDirectionChange sets the state of a direction.
func (c *GamepadController) ProcessDirectionChange(port int, d input.Direction, pressed bool) {
	if !validGamepad(port) || d < 0 || int(d) >= len(c.gamepads[port].directions) {
		return
	}
	c.gamepads[port].directions[d].pressed = pressed
	glog.V(1).Infof("Gamepad %d %v pressed=%v", port+1, d, pressed)
}

// ProcessButtonChange sets the state of a button.
func (c *GamepadController) ProcessButtonChange(port int, b input.Button, pressed bool) {
	if !validGamepad(port) || b < 0 || int(b) >= len(c.gamepads[port].buttons) {
		return
	}
	c.gamepads[port].buttons[b].pressed = pressed
	glog.V(1).Infof("Gamepad %d %v pressed=%v", port+1, b, pressed)
}

// Frames returns the held or released frame count of a button.
func (c *GamepadController) Frames(port int, b input.Button) int32 {
	return c.gamepads[port].buttons[b].frames
}

// DirectionFrames returns the held or released frame count of a direction.
func (c *GamepadController) DirectionFrames(port int, d input.Direction) int32 {
	return c.gamepads[port].directions[d].frames
}

// ReadAddress reads a port of the selected gamepad. A disconnected
// gamepad reports every control as released.
func (c *GamepadController) ReadAddress(local int32) (Word, bool) {
	g := &c.gamepads[c.selected]
	switch {
	case local == GamepadPortSelectedGamepad:
		return IntegerWord(c.selected), true
	case local == GamepadPortConnected:
		return BoolWord(g.connected), true
	case local < 0 || local >= gamepadPorts:
		return 0, false
	case !g.connected:
		return IntegerWord(-1), true
	case local <= GamepadPortDown:
		return IntegerWord(g.directions[input.Left+input.Direction(local-GamepadPortLeft)].frames), true
	case local == GamepadPortButtonStart:
		return IntegerWord(g.buttons[input.ButtonStart].frames), true
	}
	return IntegerWord(g.buttons[gamepadButtonPorts[local-GamepadPortButtonA]].frames), true
}

// WriteAddress selects a gamepad. Every other port is read only.
func (c *GamepadController) WriteAddress(local int32, value Word) bool {
	if local != GamepadPortSelectedGamepad {
		return false
	}
	if v := value.AsInteger(); v >= 0 && v < MaximumGamepads {
		c.selected = v
	}
	return true
}
