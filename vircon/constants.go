package vircon

// Machine-wide constants.
const (
	// Vircon version and revision this implementation understands.
	VirconVersion  = 1
	VirconRevision = 0

	CPUFrequency    = 15000000
	FramesPerSecond = 60
	CyclesPerFrame  = CPUFrequency / FramesPerSecond

	ScreenWidth  = 640
	ScreenHeight = 360
	ScreenPixels = ScreenWidth * ScreenHeight

	// The GPU may fill up to 9 full screens per frame.
	GPUPixelCapacityPerFrame = 9 * ScreenPixels

	RAMSize        = 4 * 1024 * 1024
	MemoryCardSize = 256 * 1024

	MaximumGamepads  = 4
	SPUSoundChannels = 16
	SPUSamplingRate  = 44100
)

// Memory bus slots. The slot is selected by the 4 most significant bits of
// a memory address.
const (
	MemorySlotRAM = iota
	MemorySlotBiosROM
	MemorySlotCartridge
	MemorySlotMemoryCard

	MemoryBusSlots
)

// Control bus slots. The slot is selected by bits 8 and up of a port
// number; anything past the last device lands on the null controller.
const (
	ControlSlotTimer = iota
	ControlSlotRNG
	ControlSlotGPU
	ControlSlotSPU
	ControlSlotGamepads
	ControlSlotCartridge
	ControlSlotMemoryCard
	ControlSlotNull

	ControlBusSlots
)

const (
	memorySlotShift = 28
	memoryLocalMask = 0x0FFFFFFF
	portSlotShift   = 8
	portLocalMask   = 0xFF
)

// MemorySlot splits a CPU memory address into its bus slot and local address.
func MemorySlot(address Word) (int, int32) {
	return int(address >> memorySlotShift), int32(address & memoryLocalMask)
}

// ControlSlot splits a port number into its bus slot and local port.
func ControlSlot(port uint16) (int, int32) {
	slot := int(port >> portSlotShift)
	if slot > ControlSlotNull {
		slot = ControlSlotNull
	}
	return slot, int32(port & portLocalMask)
}
