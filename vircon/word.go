package vircon

import "math"

// Word is the 4-byte unit every Vircon component stores and transfers.
// The same bits can be read as an integer, a float, a CPU instruction or
// an RGBA color.
type Word uint32

// Instruction field layout, from the most significant bit.
//
//	bits 31..26  OpCode
//	bit  25      UsesImmediate
//	bits 24..21  Register1
//	bits 20..17  Register2
//	bits 16..14  AddressingMode
//	bits 13..0   PortNumber
const (
	opCodeShift         = 26
	usesImmediateShift  = 25
	register1Shift      = 21
	register2Shift      = 17
	addressingModeShift = 14

	opCodeMask         = 0x3F
	registerMask       = 0x0F
	addressingModeMask = 0x07
	portNumberMask     = 0x3FFF
)

// Instruction is the decoded form of an instruction word.
type Instruction struct {
	OpCode         uint8
	UsesImmediate  bool
	Register1      uint8
	Register2      uint8
	AddressingMode uint8
	PortNumber     uint16
}

// Encode packs the instruction fields into a word.
func (i Instruction) Encode() Word {
	w := Word(i.OpCode&opCodeMask) << opCodeShift
	if i.UsesImmediate {
		w |= 1 << usesImmediateShift
	}
	w |= Word(i.Register1&registerMask) << register1Shift
	w |= Word(i.Register2&registerMask) << register2Shift
	w |= Word(i.AddressingMode&addressingModeMask) << addressingModeShift
	w |= Word(i.PortNumber & portNumberMask)
	return w
}

// AsInstruction decodes the word as a CPU instruction.
func (w Word) AsInstruction() Instruction {
	return Instruction{
		OpCode:         uint8(w>>opCodeShift) & opCodeMask,
		UsesImmediate:  (w>>usesImmediateShift)&1 == 1,
		Register1:      uint8(w>>register1Shift) & registerMask,
		Register2:      uint8(w>>register2Shift) & registerMask,
		AddressingMode: uint8(w>>addressingModeShift) & addressingModeMask,
		PortNumber:     uint16(w & portNumberMask),
	}
}

// Color is a GPU color. R is stored in the least significant byte.
type Color struct {
	R, G, B, A uint8
}

// Encode packs the color as R,G,B,A from the least significant byte.
func (c Color) Encode() Word {
	return Word(c.R) | Word(c.G)<<8 | Word(c.B)<<16 | Word(c.A)<<24
}

// AsColor decodes the word as an RGBA color.
func (w Word) AsColor() Color {
	return Color{
		R: uint8(w),
		G: uint8(w >> 8),
		B: uint8(w >> 16),
		A: uint8(w >> 24),
	}
}

// AsInteger reads the word as a signed integer.
func (w Word) AsInteger() int32 {
	return int32(w)
}

// AsFloat reads the word as an IEEE 754 single precision float.
func (w Word) AsFloat() float32 {
	return math.Float32frombits(uint32(w))
}

// IntegerWord builds a word from a signed integer.
func IntegerWord(v int32) Word {
	return Word(uint32(v))
}

// FloatWord builds a word from a float.
func FloatWord(v float32) Word {
	return Word(math.Float32bits(v))
}

// BoolWord is 1 for true and 0 for false, as read from status ports.
func BoolWord(b bool) Word {
	if b {
		return 1
	}
	return 0
}
