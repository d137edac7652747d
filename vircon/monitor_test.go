package vircon

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorCommands(t *testing.T) {
	cpu := &stubCPU{haltAfter: 10}
	m := newStubMachine(t, cpu)
	var out bytes.Buffer
	mon := NewMonitor(m, strings.NewReader("on\nf 3\npause\nf\nresume\nca\nq\nf\n"), &out)

	require.NoError(t, mon.Run())
	assert.True(t, m.PowerIsOn)
	assert.False(t, m.Paused)
	assert.Equal(t, 3, cpu.frames)
	assert.Equal(t, int32(3), m.Timer.FrameCounter)
	assert.Contains(t, out.String(), "Executed 3 frames.")
	assert.Contains(t, out.String(), "No cartridge")
	assert.Contains(t, out.String(), "Quitting.")
}

func TestMonitorStep(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	var out bytes.Buffer
	mon := NewMonitor(m, strings.NewReader("bogus\nf x\n\np\noff\nq"), &out)

	assert.ErrorContains(t, mon.Step(), "unknown command bogus")
	assert.ErrorContains(t, mon.Step(), "invalid frame count")
	assert.NoError(t, mon.Step())
	assert.NoError(t, mon.Step())
	assert.Contains(t, out.String(), "Power: false, Paused: false")
	assert.NoError(t, mon.Step())
	assert.ErrorIs(t, mon.Step(), ErrQuit)
}

func TestMonitorPrintTargets(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	var out bytes.Buffer
	mon := NewMonitor(m, strings.NewReader("p gpu\np spu\np memcard\np nothing\n"), &out)
	require.NoError(t, mon.Run())

	assert.Contains(t, out.String(), "remaining pixels=2073600")
	assert.Contains(t, out.String(), "output volume=1.00, muted=false")
	assert.Contains(t, out.String(), "connected=false")
	assert.Contains(t, out.String(), "Unknown print target nothing")
}
