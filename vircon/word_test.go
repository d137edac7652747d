package vircon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	require.NoError(t, Verify())
}

func TestInstructionOpCodeOnly(t *testing.T) {
	assert.Equal(t, Word(0x04000000), Instruction{OpCode: 1}.Encode())
}

func TestColorByteOrder(t *testing.T) {
	c := Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	assert.Equal(t, Word(0x44332211), c.Encode())
	assert.Equal(t, c, Word(0x44332211).AsColor())
}

func TestInstructionFields(t *testing.T) {
	tests := []struct {
		in   Instruction
		want Word
	}{
		{Instruction{UsesImmediate: true}, 1 << 25},
		{Instruction{Register1: 0xF}, 0xF << 21},
		{Instruction{Register2: 0xF}, 0xF << 17},
		{Instruction{AddressingMode: 7}, 7 << 14},
		{Instruction{PortNumber: 0x3FFF}, 0x3FFF},
		{Instruction{OpCode: 0x3F, UsesImmediate: true, Register1: 1, Register2: 2, AddressingMode: 3, PortNumber: 0x204}, 0xFE24C204},
	}
	for _, tt := range tests {
		got := tt.in.Encode()
		assert.Equal(t, tt.want, got, "%+v", tt.in)
		assert.Equal(t, tt.in, got.AsInstruction())
	}
}

func TestWordViews(t *testing.T) {
	assert.Equal(t, int32(-1), Word(0xFFFFFFFF).AsInteger())
	assert.Equal(t, Word(0xFFFFFFFE), IntegerWord(-2))
	assert.Equal(t, float32(1.5), FloatWord(1.5).AsFloat())
	assert.Equal(t, Word(0x3F800000), FloatWord(1))
	assert.Equal(t, Word(1), BoolWord(true))
	assert.Equal(t, Word(0), BoolWord(false))
}

func TestAbiError(t *testing.T) {
	err := &AbiError{"words", 4, 8}
	assert.Equal(t, "ABI check failed: words (expected 0x4, got 0x8)", err.Error())
}
