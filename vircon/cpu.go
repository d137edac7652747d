package vircon

import (
	"fmt"

	"github.com/golang/glog"
)

// Processor is the bus master. The machine steps it once per cycle and
// stops the frame early when it waits or halts.
type Processor interface {
	Component
	Master
	ConnectBuses(memory, control *Bus)
	Waiting() bool
	Halted() bool
}

// Opcodes understood by CPU.
const (
	OpHLT  = 0x00
	OpWAIT = 0x01
	OpJMP  = 0x02
	OpMOV  = 0x13
	OpIN   = 0x17
	OpOUT  = 0x18
)

// MOV addressing modes.
const (
	MovRegFromImm = iota
	MovRegFromReg
	MovRegFromImmAddr
	MovRegFromRegAddr
	MovRegFromOffsetAddr
	MovImmAddrFromReg
	MovRegAddrFromReg
	MovOffsetAddrFromReg
)

const (
	biosStart       = Word(MemorySlotBiosROM) << memorySlotShift
	stackPointer    = 15
	stackPointerTop = RAMSize - 1
)

// CPU runs a small subset of the instruction set: enough to move data
// between registers, memory and ports, and to jump, wait and halt. An
// instruction it cannot run, or a bus access a slave rejects, is a hardware
// error and halts the CPU.
type CPU struct {
	Registers          [16]Word
	InstructionPointer Word
	halted             bool
	waiting            bool

	memory  *Bus
	control *Bus
}

var _ Processor = (*CPU)(nil)

// NewCPU creates a CPU. It is idle until ConnectBuses and Reset.
func NewCPU() *CPU {
	return &CPU{}
}

// ConnectBuses makes the CPU the master of both buses.
func (c *CPU) ConnectBuses(memory, control *Bus) {
	c.memory, c.control = memory, control
	memory.Connect(c)
	control.Connect(c)
}

func (c *CPU) Waiting() bool { return c.waiting }
func (c *CPU) Halted() bool  { return c.halted }

// ChangeFrame ends a wait.
func (c *CPU) ChangeFrame() {
	c.waiting = false
}

// Reset starts execution at the beginning of the BIOS.
func (c *CPU) Reset() {
	c.Registers = [16]Word{}
	c.Registers[stackPointer] = stackPointerTop
	c.InstructionPointer = biosStart
	c.halted = false
	c.waiting = false
}

func (c *CPU) hardwareError(err error) {
	glog.Errorf("CPU hardware error at 0x%08x: %v", c.InstructionPointer, err)
	c.halted = true
}

func (c *CPU) read(address Word) (Word, error) {
	slot, local := MemorySlot(address)
	return c.memory.Read(slot, local)
}

func (c *CPU) write(address, value Word) error {
	slot, local := MemorySlot(address)
	return c.memory.Write(slot, local, value)
}

func (c *CPU) fetch() (Word, error) {
	w, err := c.read(c.InstructionPointer)
	c.InstructionPointer++
	return w, err
}

// RunNextCycle runs one instruction.
func (c *CPU) RunNextCycle() {
	if c.halted || c.waiting {
		return
	}
	if err := c.step(); err != nil {
		c.hardwareError(err)
	}
}

func (c *CPU) step() error {
	w, err := c.fetch()
	if err != nil {
		return err
	}
	in := w.AsInstruction()
	var imm Word
	if in.UsesImmediate {
		if imm, err = c.fetch(); err != nil {
			return err
		}
	}
	r1, r2 := &c.Registers[in.Register1], &c.Registers[in.Register2]
	operand := *r1
	if in.UsesImmediate {
		operand = imm
	}

	switch in.OpCode {
	case OpHLT:
		c.halted = true
	case OpWAIT:
		c.waiting = true
	case OpJMP:
		c.InstructionPointer = operand
	case OpMOV:
		return c.mov(in.AddressingMode, r1, r2, imm)
	case OpIN:
		slot, local := ControlSlot(in.PortNumber)
		v, err := c.control.Read(slot, local)
		if err != nil {
			return err
		}
		*r1 = v
	case OpOUT:
		slot, local := ControlSlot(in.PortNumber)
		return c.control.Write(slot, local, operand)
	default:
		return fmt.Errorf("invalid opcode 0x%02x", in.OpCode)
	}
	return nil
}

func (c *CPU) mov(mode uint8, r1, r2 *Word, imm Word) error {
	var err error
	switch mode {
	case MovRegFromImm:
		*r1 = imm
	case MovRegFromReg:
		*r1 = *r2
	case MovRegFromImmAddr:
		*r1, err = c.read(imm)
	case MovRegFromRegAddr:
		*r1, err = c.read(*r2)
	case MovRegFromOffsetAddr:
		*r1, err = c.read(*r2 + imm)
	case MovImmAddrFromReg:
		err = c.write(imm, *r2)
	case MovRegAddrFromReg:
		err = c.write(*r1, *r2)
	case MovOffsetAddrFromReg:
		err = c.write(*r1+imm, *r2)
	}
	return err
}
