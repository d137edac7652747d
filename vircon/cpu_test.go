package vircon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assembler encodes instructions, each optionally followed by an immediate.
type assembler []Word

func (a *assembler) op(in Instruction, imm ...Word) *assembler {
	in.UsesImmediate = len(imm) > 0
	*a = append(*a, in.Encode())
	*a = append(*a, imm...)
	return a
}

func newCPUMachine(t *testing.T, program []Word) (*Machine, *CPU) {
	t.Helper()
	cpu := NewCPU()
	m, err := NewMachine(cpu)
	require.NoError(t, err)
	m.BiosROM.Connect(program)
	m.PowerOn()
	return m, cpu
}

func TestCPUResetState(t *testing.T) {
	cpu := NewCPU()
	cpu.Registers[3] = 9
	cpu.Reset()
	assert.Equal(t, Word(0x10000000), cpu.InstructionPointer)
	assert.Equal(t, Word(RAMSize-1), cpu.Registers[stackPointer])
	assert.Equal(t, Word(0), cpu.Registers[3])
	assert.False(t, cpu.Halted())
	assert.False(t, cpu.Waiting())
}

func TestCPUProgram(t *testing.T) {
	var a assembler
	a.op(Instruction{OpCode: OpMOV, Register1: 0, AddressingMode: MovRegFromImm}, 0x1234).
		op(Instruction{OpCode: OpMOV, Register2: 0, AddressingMode: MovImmAddrFromReg}, 0x10).
		op(Instruction{OpCode: OpOUT, Register1: 0, PortNumber: 0x200 | GPUPortClearColor}).
		op(Instruction{OpCode: OpIN, Register1: 1, PortNumber: 0x100}).
		op(Instruction{OpCode: OpWAIT}).
		op(Instruction{OpCode: OpHLT})
	m, cpu := newCPUMachine(t, a)

	m.RunNextFrame()
	assert.True(t, cpu.Waiting())
	assert.False(t, cpu.Halted())
	assert.Equal(t, int32(5), m.Timer.CycleCounter)

	v, _ := m.RAM.ReadAddress(0x10)
	assert.Equal(t, Word(0x1234), v)
	assert.Equal(t, Word(0x1234).AsColor(), m.GPU.ClearColor())
	assert.Equal(t, Word(48271), cpu.Registers[1])

	m.RunNextFrame()
	assert.True(t, cpu.Halted())
	assert.Equal(t, int32(1), m.Timer.CycleCounter)
}

func TestCPUMovModes(t *testing.T) {
	var a assembler
	a.op(Instruction{OpCode: OpMOV, Register1: 2, AddressingMode: MovRegFromImm}, 0x20).
		op(Instruction{OpCode: OpMOV, Register1: 3, AddressingMode: MovRegFromImm}, 77).
		op(Instruction{OpCode: OpMOV, Register1: 2, Register2: 3, AddressingMode: MovRegAddrFromReg}).
		op(Instruction{OpCode: OpMOV, Register1: 2, Register2: 3, AddressingMode: MovOffsetAddrFromReg}, 1).
		op(Instruction{OpCode: OpMOV, Register1: 4, Register2: 2, AddressingMode: MovRegFromRegAddr}).
		op(Instruction{OpCode: OpMOV, Register1: 5, Register2: 2, AddressingMode: MovRegFromOffsetAddr}, 1).
		op(Instruction{OpCode: OpMOV, Register1: 6, AddressingMode: MovRegFromImmAddr}, 0x21).
		op(Instruction{OpCode: OpMOV, Register1: 7, Register2: 6, AddressingMode: MovRegFromReg}).
		op(Instruction{OpCode: OpHLT})
	m, cpu := newCPUMachine(t, a)

	m.RunNextFrame()
	require.True(t, cpu.Halted())
	for _, r := range []int{3, 4, 5, 6, 7} {
		assert.Equal(t, Word(77), cpu.Registers[r], "R%d", r)
	}
	v, _ := m.RAM.ReadAddress(0x21)
	assert.Equal(t, Word(77), v)
}

func TestCPUJump(t *testing.T) {
	var a assembler
	a.op(Instruction{OpCode: OpJMP}, 0x10000003).
		op(Instruction{OpCode: OpHLT}).
		op(Instruction{OpCode: OpWAIT})
	m, cpu := newCPUMachine(t, a)

	m.RunNextFrame()
	assert.True(t, cpu.Waiting())
	assert.False(t, cpu.Halted())
}

func TestCPUHardwareErrors(t *testing.T) {
	tests := []struct {
		name    string
		program assembler
	}{
		{"invalid opcode", assembler{Instruction{OpCode: 0x3F}.Encode()}},
		{"write to ROM", *(&assembler{}).op(Instruction{OpCode: OpMOV, AddressingMode: MovImmAddrFromReg}, 0x10000000)},
		{"missing cartridge", *(&assembler{}).op(Instruction{OpCode: OpMOV, AddressingMode: MovRegFromImmAddr}, 0x20000000)},
		{"read only port", *(&assembler{}).op(Instruction{OpCode: OpOUT, PortNumber: 0x000})},
		{"past the end of the BIOS", assembler{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cpu := newCPUMachine(t, tt.program)
			m.RunNextFrame()
			assert.True(t, cpu.Halted())
			assert.Equal(t, int32(1), m.Timer.CycleCounter)
		})
	}
}
