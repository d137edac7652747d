package input

// Event is a joystick event produced by the host.
type Event interface {
	Instance() int32
}

// DeviceAdded reports a joystick that was opened. ID is the instance id
// the host assigned to it; Path is its stable device path.
type DeviceAdded struct {
	ID   int32
	Path string
	Name string
	GUID string
}

// DeviceRemoved reports a joystick that went away.
type DeviceRemoved struct {
	ID int32
}

// AxisMotion reports a new raw axis position.
type AxisMotion struct {
	ID    int32
	Axis  int
	Value int16
}

// ButtonChange reports a button going down or up.
type ButtonChange struct {
	ID      int32
	Button  int
	Pressed bool
}

// HatMotion reports the set of active directions of a hat as a bitmask.
type HatMotion struct {
	ID    int32
	Hat   int
	Value int
}

func (e DeviceAdded) Instance() int32   { return e.ID }
func (e DeviceRemoved) Instance() int32 { return e.ID }
func (e AxisMotion) Instance() int32    { return e.ID }
func (e ButtonChange) Instance() int32  { return e.ID }
func (e HatMotion) Instance() int32     { return e.ID }
