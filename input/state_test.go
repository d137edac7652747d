package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type change struct {
	port    int
	kind    string
	index   int
	pressed bool
}

type fakeSink struct {
	connected [Ports]bool
	changes   []change
}

func (f *fakeSink) IsGamepadConnected(port int) bool { return f.connected[port] }

func (f *fakeSink) ProcessConnectionChange(port int, connected bool) {
	f.connected[port] = connected
	f.changes = append(f.changes, change{port, "connection", 0, connected})
}

func (f *fakeSink) ProcessDirectionChange(port int, d Direction, pressed bool) {
	f.changes = append(f.changes, change{port, "direction", int(d), pressed})
}

func (f *fakeSink) ProcessButtonChange(port int, b Button, pressed bool) {
	f.changes = append(f.changes, change{port, "button", int(b), pressed})
}

func newBoundState(t *testing.T) (*State, *fakeSink) {
	t.Helper()
	s := NewState([Ports]string{"", "/dev/input/js0", "", ""}, DefaultMapping())
	sink := &fakeSink{}
	s.ProcessEvent(DeviceAdded{ID: 7, Path: "/dev/input/js0", Name: "pad"}, sink)
	require.Equal(t, int32(7), s.PortIDs[1])
	require.True(t, sink.connected[1])
	sink.changes = nil
	return s, sink
}

func TestNewStateUnbound(t *testing.T) {
	s := NewState([Ports]string{}, DefaultMapping())
	for port, id := range s.PortIDs {
		assert.Equal(t, Unbound, id, "port %d", port)
	}
	assert.Empty(t, s.Devices)
}

func TestDeviceAddedWithoutMatchingPath(t *testing.T) {
	s := NewState([Ports]string{"a", "b", "c", "d"}, DefaultMapping())
	sink := &fakeSink{}
	s.ProcessEvent(DeviceAdded{ID: 3, Path: "z"}, sink)
	assert.Contains(t, s.Devices, int32(3))
	assert.Equal(t, -1, s.PortFromInstance(3))
	assert.Empty(t, sink.changes)

	// Events from an unbound device are ignored.
	s.ProcessEvent(ButtonChange{ID: 3, Button: 0, Pressed: true}, sink)
	assert.Empty(t, sink.changes)
}

func TestDeviceRemoved(t *testing.T) {
	s, sink := newBoundState(t)
	s.ProcessEvent(DeviceRemoved{ID: 7}, sink)
	assert.Equal(t, Unbound, s.PortIDs[1])
	assert.NotContains(t, s.Devices, int32(7))
	assert.Equal(t, []change{{1, "connection", 0, false}}, sink.changes)
}

func TestAxisMotionPositive(t *testing.T) {
	s, sink := newBoundState(t)
	s.ProcessEvent(AxisMotion{ID: 7, Axis: 0, Value: 20000}, sink)
	want := []change{
		{1, "direction", int(Left), false},
		{1, "direction", int(Right), true},
	}
	assert.Equal(t, want, sink.changes)
}

func TestAxisMotionDeadZone(t *testing.T) {
	tests := []struct {
		value       int16
		left, right bool
	}{
		{0, false, false},
		{16000, false, false},
		{16001, false, true},
		{-16000, false, false},
		{-16001, true, false},
		{-32768, true, false},
		{32767, false, true},
	}
	for _, tt := range tests {
		s, sink := newBoundState(t)
		s.ProcessEvent(AxisMotion{ID: 7, Axis: 0, Value: tt.value}, sink)
		want := []change{
			{1, "direction", int(Left), tt.left},
			{1, "direction", int(Right), tt.right},
		}
		assert.Equal(t, want, sink.changes, "value=%d", tt.value)
	}
}

func TestAxisMotionFansOutToButtons(t *testing.T) {
	s, sink := newBoundState(t)
	s.Mapping.Buttons[ButtonL] = AxisControl(2, false)
	s.Mapping.Buttons[ButtonR] = AxisControl(2, true)
	s.ProcessEvent(AxisMotion{ID: 7, Axis: 2, Value: -30000}, sink)
	want := []change{
		{1, "button", int(ButtonL), true},
		{1, "button", int(ButtonR), false},
	}
	assert.Equal(t, want, sink.changes)
}

func TestButtonChange(t *testing.T) {
	s, sink := newBoundState(t)
	s.ProcessEvent(ButtonChange{ID: 7, Button: 6, Pressed: true}, sink)
	s.ProcessEvent(ButtonChange{ID: 7, Button: 6, Pressed: false}, sink)
	want := []change{
		{1, "button", int(ButtonStart), true},
		{1, "button", int(ButtonStart), false},
	}
	assert.Equal(t, want, sink.changes)
}

func TestButtonChangeIgnoredWhenPortDisconnected(t *testing.T) {
	s, sink := newBoundState(t)
	sink.connected[1] = false
	s.ProcessEvent(ButtonChange{ID: 7, Button: 0, Pressed: true}, sink)
	assert.Empty(t, sink.changes)
}

func TestHatMotion(t *testing.T) {
	s, sink := newBoundState(t)
	s.Mapping.Directions[Up] = HatControl(0, HatUp)
	s.Mapping.Directions[Left] = HatControl(0, HatLeft)
	s.Mapping.Directions[Right] = HatControl(1, HatRight)
	s.ProcessEvent(HatMotion{ID: 7, Hat: 0, Value: HatUp | HatLeft}, sink)
	want := []change{
		{1, "direction", int(Left), true},
		{1, "direction", int(Up), true},
	}
	assert.Equal(t, want, sink.changes)

	sink.changes = nil
	s.ProcessEvent(HatMotion{ID: 7, Hat: 0, Value: HatCentered}, sink)
	want = []change{
		{1, "direction", int(Left), false},
		{1, "direction", int(Up), false},
	}
	assert.Equal(t, want, sink.changes)
}

func TestHatMotionSkipsHatButtons(t *testing.T) {
	s, sink := newBoundState(t)
	s.Mapping.Buttons[ButtonA] = HatControl(0, HatDown)
	s.ProcessEvent(HatMotion{ID: 7, Hat: 0, Value: HatDown}, sink)
	assert.Empty(t, sink.changes)
}

func TestDefaultMapping(t *testing.T) {
	m := DefaultMapping()
	assert.Equal(t, AxisControl(0, false), m.Directions[Left])
	assert.Equal(t, AxisControl(0, true), m.Directions[Right])
	assert.Equal(t, AxisControl(1, false), m.Directions[Up])
	assert.Equal(t, AxisControl(1, true), m.Directions[Down])
	for b, c := range m.Buttons {
		assert.Equal(t, b, c.ButtonIndex, "button %v", Button(b))
		assert.False(t, c.IsAxis)
		assert.False(t, c.IsHat)
	}
}

func TestUnmapped(t *testing.T) {
	c := Unmapped()
	assert.Equal(t, -1, c.ButtonIndex)
	assert.Equal(t, -1, c.AxisIndex)
	assert.Equal(t, -1, c.HatIndex)
	assert.False(t, c.IsAxis)
	assert.False(t, c.IsHat)
}
