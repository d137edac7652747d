package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/golang/glog"
	"github.com/pkg/profile"

	"github.com/jyane/vircon/config"
	"github.com/jyane/vircon/input"
	"github.com/jyane/vircon/rom"
	"github.com/jyane/vircon/romfile"
	"github.com/jyane/vircon/ui"
	"github.com/jyane/vircon/vircon"
)

var (
	folder     = flag.String("folder", ".", "emulator folder holding the config files, Bios/, Cartridge/ and Card/")
	settings   = flag.String("settings", "", "settings file (default <folder>/"+config.SettingsFile+")")
	controls   = flag.String("controls", "", "controls file (default <folder>/"+config.ControlsFile+")")
	bios       = flag.String("bios", "", "BIOS file, overrides the settings")
	cartridge  = flag.String("cartridge", "", "cartridge file, overrides the settings")
	memcard    = flag.String("memcard", "", "memory card file, overrides the settings")
	newMemcard = flag.Bool("new-memcard", false, "create the memory card file if it does not exist")
	width      = flag.Int("width", vircon.ScreenWidth*2, "window width")
	height     = flag.Int("height", vircon.ScreenHeight*2, "window height")
	cpuprofile = flag.String("cpuprofile", "", "write a cpu profile to this directory")
	debug      = flag.Bool("debug", false, "run without a window, driven by the monitor on stdin")
	info       = flag.String("info", "", "print the header of a ROM file and exit")
	extract    = flag.String("extract", "", "export the textures and sounds of a ROM file and exit")
	out        = flag.String("out", ".", "output directory for -extract")
)

func init() {
	runtime.LockOSThread()
}

func orDefault(value, def string) string {
	if value != "" {
		return value
	}
	return def
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// readROM loads any ROM file, telling BIOS and cartridges apart by their
// signature.
func readROM(path string) (*rom.Container, error) {
	data, _, err := romfile.Load(path, romfile.Extensions)
	if err != nil {
		return nil, err
	}
	kind := rom.Cartridge
	if bytes.HasPrefix(data, []byte(rom.SignatureBios)) {
		kind = rom.Bios
	}
	return rom.Decode(data, kind)
}

func printInfo(path string) error {
	c, err := readROM(path)
	if err != nil {
		return err
	}
	h := c.Header
	fmt.Printf("Kind:       %s\n", c.Kind)
	fmt.Printf("Title:      %s\n", h.Title)
	fmt.Printf("Format:     %d.%d\n", h.Version, h.Revision)
	fmt.Printf("ROM:        %d.%d\n", h.ROMVersion, h.ROMRevision)
	fmt.Printf("Program:    %d words\n", len(c.Program))
	fmt.Printf("Textures:   %d\n", len(c.Textures))
	fmt.Printf("Sounds:     %d\n", len(c.Sounds))
	return nil
}

func newMachine() (*vircon.Machine, *input.State, config.Settings) {
	if err := vircon.Verify(); err != nil {
		glog.Fatalln(err)
	}

	mapping, err := config.LoadControls(orDefault(*controls, filepath.Join(*folder, config.ControlsFile)))
	if err != nil {
		glog.Warningf("%v, using default controls", err)
	}
	s, err := config.LoadSettings(orDefault(*settings, filepath.Join(*folder, config.SettingsFile)), *folder)
	if err != nil {
		glog.Warningf("%v, using default settings", err)
	}
	s.CartridgePath = orDefault(*cartridge, s.CartridgePath)
	s.MemoryCardPath = orDefault(*memcard, s.MemoryCardPath)

	m, err := vircon.NewMachine(vircon.NewCPU())
	if err != nil {
		glog.Fatalln(err)
	}
	m.SPU.SetBufferedFrames(s.AudioBuffers)
	if err := m.LoadBios(orDefault(*bios, s.BiosPath(*folder))); err != nil {
		glog.Fatalln(err)
	}
	return m, input.NewState(s.GamepadPaths, mapping), s
}

// loadMedia inserts the cartridge and memory card named by the settings
// when their files exist.
func loadMedia(m *vircon.Machine, s config.Settings) func() {
	return func() {
		if fileExists(s.CartridgePath) {
			if err := m.LoadCartridge(s.CartridgePath); err != nil {
				glog.Errorf("Cannot load cartridge: %v", err)
			}
		}
		if *newMemcard && !fileExists(s.MemoryCardPath) {
			if err := m.CreateMemoryCard(s.MemoryCardPath); err != nil {
				glog.Errorf("Cannot create memory card: %v", err)
			}
		}
		if fileExists(s.MemoryCardPath) {
			if err := m.LoadMemoryCard(s.MemoryCardPath); err != nil {
				glog.Errorf("Cannot load memory card: %v", err)
			}
		}
	}
}

func runMonitor(m *vircon.Machine, load func()) error {
	m.Start(load)
	defer m.Terminate()
	return vircon.NewMonitor(m, os.Stdin, os.Stdout).Run()
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if *cpuprofile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuprofile), profile.NoShutdownHook).Stop()
	}

	switch {
	case *info != "":
		if err := printInfo(*info); err != nil {
			glog.Fatalln(err)
		}
		return
	case *extract != "":
		c, err := readROM(*extract)
		if err != nil {
			glog.Fatalln(err)
		}
		if _, err := rom.Export(c, *out); err != nil {
			glog.Fatalln(err)
		}
		return
	}

	m, state, s := newMachine()
	if *debug {
		if err := runMonitor(m, loadMedia(m, s)); err != nil {
			glog.Fatalln(err)
		}
		return
	}
	if err := ui.Start(m, state, s, *width, *height, loadMedia(m, s)); err != nil {
		glog.Fatalln(err)
	}
}
