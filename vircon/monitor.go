package vircon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrQuit is returned by Monitor.Step when the quit command is entered.
var ErrQuit = errors.New("quit")

// Monitor drives a machine from a text console, you can execute some
// commands through stdio.
// commands:
//
//	p [cpu|gpu|spu|timer|cartridge|memcard]:
//	  print.
//	f [n]:
//	  run n frames, 1 by default.
//	r:
//	  reset.
//	on, off:
//	  power on or off.
//	pause, resume:
//	  pause or resume.
//	ca:
//	  print the inserted cartridge.
//	q:
//	  quit.
type Monitor struct {
	*Machine
	in     *bufio.Reader
	out    io.Writer
	frames uint64
}

// NewMonitor creates a monitor reading commands from in.
func NewMonitor(m *Machine, in io.Reader, out io.Writer) *Monitor {
	return &Monitor{Machine: m, in: bufio.NewReader(in), out: out}
}

func (c *Monitor) basePrint() {
	fmt.Fprintln(c.out, "--------------------------------------------------")
	fmt.Fprintf(c.out, "Power: %v, Paused: %v\n", c.PowerIsOn, c.Paused)
	fmt.Fprintf(c.out, "Executed frames: %d\n", c.frames)
	fmt.Fprintf(c.out, "Timer: frame=%d, cycle=%d\n", c.Timer.FrameCounter, c.Timer.CycleCounter)
	fmt.Fprintf(c.out, "Loads: CPU=%.2f%% (%.2f%%), GPU=%.2f%% (%.2f%%)\n",
		c.LastCPULoads[0], c.LastCPULoads[1], c.LastGPULoads[0], c.LastGPULoads[1])
	if cpu, ok := c.CPU.(*CPU); ok {
		fmt.Fprintf(c.out, "CPU:  IP=0x%08x, SP=0x%08x, halted=%v, waiting=%v\n",
			cpu.InstructionPointer, cpu.Registers[stackPointer], cpu.Halted(), cpu.Waiting())
	}
}

func (c *Monitor) printCartridge() {
	if !c.HasCartridge() {
		fmt.Fprintln(c.out, "No cartridge")
		return
	}
	fmt.Fprintf(c.out, "%q v%d.%d (%s): %d program words, %d textures, %d sounds\n",
		c.Cartridge.Title, c.Cartridge.Version, c.Cartridge.Revision, c.Cartridge.FileName,
		c.Cartridge.Size(), c.Cartridge.NumberOfTextures, c.Cartridge.NumberOfSounds)
}

func (c *Monitor) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	switch args[1] {
	case "c", "cpu":
		fmt.Fprintf(c.out, "%+v\n", c.CPU)
	case "g", "gpu":
		fmt.Fprintf(c.out, "remaining pixels=%d, commands=%d, cartridge textures=%d\n",
			c.GPU.RemainingPixels, c.GPU.Commands, len(c.GPU.CartridgeTextures))
	case "s", "spu":
		fmt.Fprintf(c.out, "output volume=%.2f, muted=%v, cartridge sounds=%d\n",
			c.OutputVolume(), c.IsMuted(), len(c.SPU.CartridgeSounds))
	case "t", "timer":
		fmt.Fprintf(c.out, "%+v\n", *c.Timer)
	case "ca", "cartridge":
		c.printCartridge()
	case "m", "memcard":
		fmt.Fprintf(c.out, "connected=%v, path=%q, dirty=%v\n",
			c.HasMemoryCard(), c.MemoryCard.Path, c.MemoryCard.Dirty())
	default:
		fmt.Fprintf(c.out, "Unknown print target %s\n", args[1])
	}
}

func (c *Monitor) frameCommand(args []string) error {
	n := 1
	if len(args) >= 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid frame count %q", args[1])
		}
		n = v
	}
	for i := 0; i < n; i++ {
		c.RunNextFrame()
		c.frames++
	}
	fmt.Fprintf(c.out, "Executed %d frames.\n", n)
	return nil
}

// Step reads and runs one command.
func (c *Monitor) Step() error {
	fmt.Fprintf(c.out, "Debugger mode, 'q' to quit \n>> ")
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return err
	}
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "f", "frame":
		if err := c.frameCommand(args); err != nil {
			return err
		}
		c.basePrint()
	case "r", "reset":
		c.Reset()
	case "on":
		c.PowerOn()
	case "off":
		c.PowerOff()
	case "pause":
		c.Pause()
	case "resume":
		c.Resume()
	case "ca", "cartridge":
		c.printCartridge()
	case "q", "quit":
		fmt.Fprintln(c.out, "Quitting.")
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %s", args[0])
	}
	return nil
}

// Run runs commands until quit or the end of the input.
func (c *Monitor) Run() error {
	for {
		err := c.Step()
		switch {
		case errors.Is(err, ErrQuit), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			fmt.Fprintln(c.out, err)
		}
	}
}
