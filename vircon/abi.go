package vircon

import (
	"fmt"
	"unsafe"

	"github.com/golang/glog"
)

// Expected raw values of the ABI test words.
const (
	abiTestOpCode      = 0x1
	abiExpectedOpCode  = 0x04000000
	abiExpectedRGBA    = 0x44332211
	abiExpectedWordLen = 4
)

// AbiError reports a host layout the machine cannot run on.
type AbiError struct {
	Check    string
	Expected uint64
	Actual   uint64
}

func (e *AbiError) Error() string {
	return fmt.Sprintf("ABI check failed: %s (expected 0x%x, got 0x%x)", e.Check, e.Expected, e.Actual)
}

// Verify checks the word and port layouts every later read and write
// depends on. Any failure is fatal for the caller.
func Verify() error {
	glog.Info("Performing ABI assertions")
	if size := unsafe.Sizeof(Word(0)); size != abiExpectedWordLen {
		return &AbiError{"Vircon words are not 4 bytes in size", abiExpectedWordLen, uint64(size)}
	}
	if w := (Instruction{OpCode: abiTestOpCode}).Encode(); w != abiExpectedOpCode {
		return &AbiError{"fields of CPU instructions are not correctly ordered", abiExpectedOpCode, uint64(w)}
	}
	if w := (Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}).Encode(); w != abiExpectedRGBA {
		return &AbiError{"components of GPU colors are not correctly ordered as RGBA", abiExpectedRGBA, uint64(w)}
	}
	glog.Info("Performing I/O port assertions")
	return verifyPorts()
}

func verifyPorts() error {
	var regs gpuRegisters
	detected := (unsafe.Offsetof(regs.DrawingAngle) - unsafe.Offsetof(regs.Command)) / unsafe.Sizeof(Word(0))
	expected := uintptr(GPUPortDrawingAngle - GPUPortCommand)
	if detected != expected {
		return &AbiError{"GPU ports are not correctly ordered, or there is padding between them", uint64(expected), uint64(detected)}
	}
	if size := unsafe.Sizeof(regs); size != gpuPorts*unsafe.Sizeof(Word(0)) {
		return &AbiError{"GPU port block has trailing padding", uint64(gpuPorts * abiExpectedWordLen), uint64(size)}
	}
	return nil
}
