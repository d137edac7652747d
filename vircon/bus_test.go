package vircon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusUnboundSlot(t *testing.T) {
	b := NewBus("test", 2)
	b.BindSlave(0, NewRAM(4))

	_, err := b.Read(1, 0)
	assert.ErrorIs(t, err, ErrUnboundSlot)
	assert.ErrorIs(t, b.Write(5, 0, 1), ErrUnboundSlot)
	assert.ErrorIs(t, b.CheckBound(), ErrUnboundSlot)

	b.BindSlave(1, NullController{})
	assert.NoError(t, b.CheckBound())
}

func TestBusRoutesToSlave(t *testing.T) {
	b := NewBus("test", 2)
	ram := NewRAM(4)
	b.BindSlave(1, ram)

	require.NoError(t, b.Write(1, 3, 0xCAFE))
	got, err := b.Read(1, 3)
	require.NoError(t, err)
	assert.Equal(t, Word(0xCAFE), got)

	_, err = b.Read(1, 4)
	assert.ErrorIs(t, err, ErrAccessRejected)
	assert.ErrorIs(t, b.Write(1, -1, 0), ErrAccessRejected)
}

func TestMemorySlot(t *testing.T) {
	slot, local := MemorySlot(0x20000010)
	assert.Equal(t, MemorySlotCartridge, slot)
	assert.Equal(t, int32(0x10), local)
}

func TestControlSlot(t *testing.T) {
	tests := []struct {
		port  uint16
		slot  int
		local int32
	}{
		{0x000, ControlSlotTimer, 0},
		{0x102, ControlSlotRNG, 2},
		{0x20B, ControlSlotGPU, 0x0B},
		{0x600, ControlSlotMemoryCard, 0},
		{0x700, ControlSlotNull, 0},
		{0x3FFF, ControlSlotNull, 0xFF},
	}
	for _, tt := range tests {
		slot, local := ControlSlot(tt.port)
		assert.Equal(t, tt.slot, slot, "0x%x", tt.port)
		assert.Equal(t, tt.local, local, "0x%x", tt.port)
	}
}

func TestRAM(t *testing.T) {
	r := NewRAM(2)
	assert.True(t, r.WriteAddress(1, 7))
	v, ok := r.ReadAddress(1)
	assert.True(t, ok)
	assert.Equal(t, Word(7), v)
	r.ClearContents()
	v, _ = r.ReadAddress(1)
	assert.Equal(t, Word(0), v)
	assert.Equal(t, 2, r.Size())
}

func TestROM(t *testing.T) {
	r := &ROM{}
	_, ok := r.ReadAddress(0)
	assert.False(t, ok)

	r.Connect([]Word{1, 2})
	v, ok := r.ReadAddress(1)
	assert.True(t, ok)
	assert.Equal(t, Word(2), v)
	assert.False(t, r.WriteAddress(0, 5))

	r.Disconnect()
	assert.Equal(t, 0, r.Size())
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	timer.now = func() time.Time { return time.Date(2024, time.February, 1, 1, 2, 3, 0, time.UTC) }

	timer.ChangeFrame()
	timer.RunNextCycle()
	timer.RunNextCycle()

	read := func(port int32) int32 {
		v, ok := timer.ReadAddress(port)
		require.True(t, ok)
		return v.AsInteger()
	}
	assert.Equal(t, int32(2024<<16|31), read(TimerPortCurrentDate))
	assert.Equal(t, int32(3723), read(TimerPortCurrentTime))
	assert.Equal(t, int32(1), read(TimerPortFrameCounter))
	assert.Equal(t, int32(2), read(TimerPortCycleCounter))
	assert.False(t, timer.WriteAddress(TimerPortFrameCounter, 0))

	timer.ChangeFrame()
	assert.Equal(t, int32(0), timer.CycleCounter)
	timer.Reset()
	assert.Equal(t, int32(0), timer.FrameCounter)
}

func TestRNG(t *testing.T) {
	r := &RNG{}
	r.Reset()
	v, ok := r.ReadAddress(RNGPortCurrentValue)
	require.True(t, ok)
	assert.Equal(t, int32(48271), v.AsInteger())
	v, _ = r.ReadAddress(RNGPortCurrentValue)
	assert.Equal(t, int32(182605794), v.AsInteger())

	require.True(t, r.WriteAddress(RNGPortCurrentValue, 1))
	v, _ = r.ReadAddress(RNGPortCurrentValue)
	assert.Equal(t, int32(48271), v.AsInteger())

	_, ok = r.ReadAddress(1)
	assert.False(t, ok)
}

func TestRNGSeedFolding(t *testing.T) {
	tests := []struct {
		seed Word
		want int32
	}{
		{0, 0x7FFFFFFE},
		{IntegerWord(-5), 0x7FFFFFFE - 5},
		{0x7FFFFFFF, 0x7FFFFFFE},
		{IntegerWord(-0x7FFFFFFF), 0x7FFFFFFE},
		{IntegerWord(-0x80000000), 0x7FFFFFFD},
		{42, 42},
	}
	for _, tt := range tests {
		r := &RNG{}
		require.True(t, r.WriteAddress(RNGPortCurrentValue, tt.seed))
		assert.Equal(t, tt.want, r.CurrentValue, "seed 0x%x", uint32(tt.seed))
	}
}

func TestNullController(t *testing.T) {
	var n NullController
	v, ok := n.ReadAddress(12)
	assert.True(t, ok)
	assert.Equal(t, Word(0), v)
	assert.True(t, n.WriteAddress(3, 9))
}
