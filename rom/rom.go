// Package rom reads and writes Vircon ROM containers. A container holds a
// global header followed by a program section, a video section with the
// textures and an audio section with the sounds. All fields are 32-bit
// little endian words.
package rom

import (
	"errors"
	"fmt"
)

// Kind is the container kind.
type Kind int

const (
	Bios Kind = iota
	Cartridge
)

func (k Kind) String() string {
	switch k {
	case Bios:
		return "BIOS"
	case Cartridge:
		return "cartridge"
	}
	return "unknown"
}

// Signatures.
const (
	SignatureBios       = "V32-BIOS"
	SignatureCartridge  = "V32-CART"
	SignatureBinary     = "V32-VBIN"
	SignatureTexture    = "V32-VTEX"
	SignatureSound      = "V32-VSND"
	SignatureMemoryCard = "V32-MEMC"

	signatureSize = 8
)

// Sizes in bytes of the headers.
const (
	HeaderSize        = 128
	BinaryHeaderSize  = signatureSize + 4
	TextureHeaderSize = signatureSize + 8
	SoundHeaderSize   = signatureSize + 4

	titleSize = 64
	wordSize  = 4
)

// Format version this package understands.
const (
	Version  = 1
	Revision = 0
)

// Limits.
const (
	MaxBiosProgramWords      = 1024 * 1024
	MaxCartridgeProgramWords = 128 * 1024 * 1024
	MaxTextureSize           = 1024
	MaxCartridgeTextures     = 256
	MaxCartridgeSounds       = 1024
	MaxBiosSoundSamples      = 1024 * 1024
	MaxCartridgeSoundSamples = 256 * 1024 * 1024

	MemoryCardWords = 256 * 1024
	MemoryCardSize  = signatureSize + MemoryCardWords*wordSize
)

var (
	// ErrFormat matches every container format error.
	ErrFormat = errors.New("incorrect V32 file format")

	ErrWrongKind = fmt.Errorf("%w: wrong container kind", ErrFormat)
	ErrSignature = fmt.Errorf("%w: invalid signature", ErrFormat)
	ErrVersion   = fmt.Errorf("%w: made for a more recent version of Vircon", ErrFormat)
)

// Validation steps, in the order they run.
const (
	StepSize = iota + 1
	StepSignature
	StepVersion
	StepCounts
	StepLayout
	StepProgram
	StepVideo
	StepAudio
)

// FormatError describes the validation step that rejected a container.
// Expected and Actual are meaningful when HasValues is set.
type FormatError struct {
	Kind      Kind
	Step      int
	Reason    string
	Expected  uint64
	Actual    uint64
	HasValues bool

	err error
}

func (e *FormatError) Error() string {
	s := fmt.Sprintf("%v: step %d: %s", e.Kind, e.Step, e.Reason)
	if e.HasValues {
		s += fmt.Sprintf(" (expected %d, got %d)", e.Expected, e.Actual)
	}
	return s
}

func (e *FormatError) Unwrap() error {
	if e.err == nil {
		return ErrFormat
	}
	return e.err
}

// Section locates a section in the file.
type Section struct {
	Offset uint32
	Length uint32
}

// End is the offset right after the section.
func (s Section) End() uint64 {
	return uint64(s.Offset) + uint64(s.Length)
}

// Header is the global header of a container.
type Header struct {
	Signature   string
	Version     uint32
	Revision    uint32
	Title       string
	ROMVersion  uint32
	ROMRevision uint32
	Textures    uint32
	Sounds      uint32
	Program     Section
	Video       Section
	Audio       Section
}

// Texture is a decoded texture. Pixels are RGBA words, row by row.
type Texture struct {
	Width  int
	Height int
	Pixels []uint32
}

// Sound is a decoded sound. Each sample holds the left channel in the low
// 16 bits and the right channel in the high 16 bits.
type Sound struct {
	Samples []uint32
}

// Container is a fully validated ROM.
type Container struct {
	Kind     Kind
	Header   Header
	Program  []uint32
	Textures []Texture
	Sounds   []Sound
}

// Limits bound the declared sizes of a container.
type Limits struct {
	ProgramWords      uint64
	Textures          uint64
	TextureSize       uint64
	Sounds            uint64
	SoundSamples      uint64
	TotalSoundSamples uint64
}

// LimitsFor returns the console limits for a container kind.
func LimitsFor(k Kind) Limits {
	if k == Bios {
		return Limits{
			ProgramWords:      MaxBiosProgramWords,
			Textures:          1,
			TextureSize:       MaxTextureSize,
			Sounds:            1,
			SoundSamples:      MaxBiosSoundSamples,
			TotalSoundSamples: MaxBiosSoundSamples,
		}
	}
	return Limits{
		ProgramWords:      MaxCartridgeProgramWords,
		Textures:          MaxCartridgeTextures,
		TextureSize:       MaxTextureSize,
		Sounds:            MaxCartridgeSounds,
		SoundSamples:      MaxCartridgeSoundSamples,
		TotalSoundSamples: MaxCartridgeSoundSamples,
	}
}

func signature(k Kind) string {
	if k == Bios {
		return SignatureBios
	}
	return SignatureCartridge
}
