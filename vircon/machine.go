// Package vircon implements the Vircon virtual machine: a CPU driving a
// memory bus and a control bus, the components bound to them, and the
// frame scheduler and power state that run the whole.
package vircon

import (
	"fmt"
	"math"

	"github.com/golang/glog"

	"github.com/jyane/vircon/input"
)

// Machine is the whole console. Buses and slot bindings are fixed when it is
// created; media can be loaded and unloaded at any time after that.
type Machine struct {
	CPU        Processor
	MemoryBus  *Bus
	ControlBus *Bus

	RAM        *RAM
	BiosROM    *ROM
	Cartridge  *CartridgeController
	MemoryCard *MemoryCardController
	Timer      *Timer
	RNG        *RNG
	GPU        *GPU
	SPU        *SPU
	Gamepads   *GamepadController
	Null       NullController

	PowerIsOn bool
	Paused    bool

	// Index 0 is the last frame, index 1 the one before it.
	LastCPULoads [2]float64
	LastGPULoads [2]float64

	flush func()
}

// NewMachine assembles a machine around cpu. The machine stays off, and is
// not reset, until PowerOn.
func NewMachine(cpu Processor) (*Machine, error) {
	m := &Machine{
		CPU:        cpu,
		MemoryBus:  NewBus("memory", MemoryBusSlots),
		ControlBus: NewBus("control", ControlBusSlots),
		RAM:        NewRAM(RAMSize),
		BiosROM:    &ROM{},
		Cartridge:  &CartridgeController{},
		MemoryCard: &MemoryCardController{},
		Timer:      NewTimer(),
		RNG:        &RNG{},
		GPU:        NewGPU(),
		SPU:        NewSPU(),
		Gamepads:   NewGamepadController(),
		flush:      func() {},
	}
	cpu.ConnectBuses(m.MemoryBus, m.ControlBus)

	m.MemoryBus.BindSlave(MemorySlotRAM, m.RAM)
	m.MemoryBus.BindSlave(MemorySlotBiosROM, m.BiosROM)
	m.MemoryBus.BindSlave(MemorySlotCartridge, m.Cartridge)
	m.MemoryBus.BindSlave(MemorySlotMemoryCard, m.MemoryCard)

	m.ControlBus.BindSlave(ControlSlotTimer, m.Timer)
	m.ControlBus.BindSlave(ControlSlotRNG, m.RNG)
	m.ControlBus.BindSlave(ControlSlotGPU, m.GPU)
	m.ControlBus.BindSlave(ControlSlotSPU, m.SPU)
	m.ControlBus.BindSlave(ControlSlotGamepads, m.Gamepads)
	m.ControlBus.BindSlave(ControlSlotCartridge, m.Cartridge.Ports())
	m.ControlBus.BindSlave(ControlSlotMemoryCard, m.MemoryCard.Ports())
	m.ControlBus.BindSlave(ControlSlotNull, m.Null)

	for _, b := range []*Bus{m.MemoryBus, m.ControlBus} {
		if err := b.CheckBound(); err != nil {
			return nil, fmt.Errorf("failed to assemble machine: %w", err)
		}
	}
	return m, nil
}

// SetRenderFlush sets the hook called at the end of every frame so that
// the drawing issued during the frame is complete.
func (m *Machine) SetRenderFlush(flush func()) {
	if flush == nil {
		flush = func() {}
	}
	m.flush = flush
}

// AttachAudioSource sets the hardware audio source.
func (m *Machine) AttachAudioSource(source AudioSource) {
	m.SPU.AttachSource(source)
}

// Initialize starts audio playback.
func (m *Machine) Initialize() {
	m.SPU.InitializeAudio()
}

// Start initializes the machine, inserts media through load and powers on.
// load may be nil.
func (m *Machine) Start(load func()) {
	m.Initialize()
	if load != nil {
		load()
	}
	m.PowerOn()
}

// Terminate stops audio playback and releases all media.
func (m *Machine) Terminate() {
	m.SPU.TerminateAudio()
	m.UnloadCartridge()
	m.UnloadMemoryCard()
}

// RunNextFrame runs one frame of machine time. It does nothing while the
// power is off or the machine is paused.
func (m *Machine) RunNextFrame() {
	if !m.PowerIsOn || m.Paused {
		return
	}

	m.Timer.ChangeFrame()
	m.CPU.ChangeFrame()
	m.GPU.ChangeFrame()
	m.SPU.ChangeFrame()
	m.MemoryCard.ChangeFrame()
	m.Gamepads.ChangeFrame()

	for i := 0; i < CyclesPerFrame; i++ {
		m.Timer.RunNextCycle()
		m.CPU.RunNextCycle()
		if m.CPU.Waiting() || m.CPU.Halted() {
			break
		}
	}

	m.LastCPULoads[1] = m.LastCPULoads[0]
	m.LastCPULoads[0] = 100 * float64(m.Timer.CycleCounter) / CyclesPerFrame

	used := GPUPixelCapacityPerFrame - max(0, m.GPU.RemainingPixels)
	m.LastGPULoads[1] = m.LastGPULoads[0]
	m.LastGPULoads[0] = 100 * float64(used) / GPUPixelCapacityPerFrame

	m.flush()
}

// Loads returns the CPU and GPU load of the last frame, in percent.
func (m *Machine) Loads() (cpu, gpu float64) {
	return m.LastCPULoads[0], m.LastGPULoads[0]
}

// Reset resets every component and clears RAM. It does not change the
// power state.
func (m *Machine) Reset() {
	glog.Infof("Machine reset")
	m.Timer.Reset()
	m.RNG.Reset()
	m.CPU.Reset()
	m.GPU.Reset()
	m.SPU.Reset()
	m.Gamepads.Reset()
	m.RAM.ClearContents()
	m.LastCPULoads = [2]float64{}
	m.LastGPULoads = [2]float64{}
}

// PowerOn turns the machine on and resets it.
func (m *Machine) PowerOn() {
	if m.PowerIsOn {
		return
	}
	glog.Infof("Power on")
	m.PowerIsOn = true
	m.Reset()
}

// PowerOff turns the machine off and silences every channel.
func (m *Machine) PowerOff() {
	if !m.PowerIsOn {
		return
	}
	glog.Infof("Power off")
	m.PowerIsOn = false
	m.SPU.StopAllChannels()
}

// Pause stops frames from running and pauses audio playback.
func (m *Machine) Pause() {
	if !m.PowerIsOn || m.Paused {
		return
	}
	m.Paused = true
	m.SPU.SetThreadPaused(true)
	m.SPU.pauseSource()
}

// Resume undoes Pause.
func (m *Machine) Resume() {
	if !m.PowerIsOn || !m.Paused {
		return
	}
	m.Paused = false
	m.SPU.playSource()
	m.SPU.SetThreadPaused(false)
}

func (m *Machine) HasCartridge() bool {
	return m.Cartridge.Connected()
}

func (m *Machine) HasMemoryCard() bool {
	return m.MemoryCard.Connected()
}

func (m *Machine) HasGamepad(port int) bool {
	return m.Gamepads.IsGamepadConnected(port)
}

// OutputVolume returns the perceived output volume in [0, 1].
func (m *Machine) OutputVolume() float32 {
	return float32(math.Sqrt(float64(clamp(m.SPU.OutputVolume, 0, 1))))
}

// SetOutputVolume sets the perceived output volume. The SPU gain is the
// square of it.
func (m *Machine) SetOutputVolume(volume float32) {
	volume = clamp(volume, 0, 1)
	m.SPU.SetOutputVolume(volume * volume)
}

func (m *Machine) IsMuted() bool {
	return m.SPU.Mute
}

func (m *Machine) SetMute(mute bool) {
	m.SPU.SetMute(mute)
}

// ProcessEvent feeds a host input event through the mapping in state to the
// gamepad controller.
func (m *Machine) ProcessEvent(state *input.State, ev input.Event) {
	state.ProcessEvent(ev, m.Gamepads)
}
