package vircon

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/jyane/vircon/rom"
	"github.com/jyane/vircon/romfile"
)

func toWords(data []uint32) []Word {
	words := make([]Word, len(data))
	for i, v := range data {
		words[i] = Word(v)
	}
	return words
}

func readContainer(path string, kind rom.Kind) (*rom.Container, string, error) {
	data, name, err := romfile.Load(path, romfile.Extensions)
	if err != nil {
		return nil, "", err
	}
	c, err := rom.Decode(data, kind)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return c, name, nil
}

// LoadBios loads the BIOS program, texture and sound. The machine cannot run
// without a BIOS, so callers usually treat a failure as fatal.
func (m *Machine) LoadBios(path string) error {
	glog.Infof("Loading BIOS from %s", path)
	c, _, err := readContainer(path, rom.Bios)
	if err != nil {
		return fmt.Errorf("failed to load BIOS: %w", err)
	}
	m.BiosROM.Connect(toWords(c.Program))
	t := c.Textures[0]
	m.GPU.LoadBiosTexture(toWords(t.Pixels), t.Width, t.Height)
	m.SPU.LoadBiosSound(toWords(c.Sounds[0].Samples))
	glog.Infof("BIOS %q loaded: %d program words, texture %dx%d, %d sound samples",
		c.Header.Title, len(c.Program), t.Width, t.Height, len(c.Sounds[0].Samples))
	return nil
}

// LoadCartridge replaces the inserted cartridge. Nothing changes unless the
// whole file is valid.
func (m *Machine) LoadCartridge(path string) error {
	glog.Infof("Loading cartridge from %s", path)
	c, name, err := readContainer(path, rom.Cartridge)
	if err != nil {
		return fmt.Errorf("failed to load cartridge: %w", err)
	}

	m.UnloadCartridge()
	m.Cartridge.Connect(toWords(c.Program))
	for _, t := range c.Textures {
		m.GPU.AddCartridgeTexture(toWords(t.Pixels), t.Width, t.Height)
	}
	for _, s := range c.Sounds {
		m.SPU.AddCartridgeSound(toWords(s.Samples))
	}

	m.Cartridge.NumberOfTextures = len(c.Textures)
	m.Cartridge.NumberOfSounds = len(c.Sounds)
	m.Cartridge.Title = c.Header.Title
	m.Cartridge.Version = c.Header.ROMVersion
	m.Cartridge.Revision = c.Header.ROMRevision
	m.Cartridge.FileName = name
	glog.Infof("Cartridge %q v%d.%d loaded: %d program words, %d textures, %d sounds",
		c.Header.Title, c.Header.ROMVersion, c.Header.ROMRevision, len(c.Program), len(c.Textures), len(c.Sounds))
	return nil
}

// UnloadCartridge removes the cartridge and releases its textures and
// sounds. It does nothing when no cartridge is inserted.
func (m *Machine) UnloadCartridge() {
	if !m.HasCartridge() {
		return
	}
	glog.Infof("Unloading cartridge %q", m.Cartridge.Title)
	m.Cartridge.Disconnect()
	m.GPU.UnloadCartridgeTextures()
	m.SPU.UnloadCartridgeSounds()
}

// CreateMemoryCard writes a new empty memory card file. The card is not
// inserted.
func (m *Machine) CreateMemoryCard(path string) error {
	glog.Infof("Creating memory card %s", path)
	return m.MemoryCard.CreateFile(path)
}

// LoadMemoryCard removes the current card and inserts the one at path.
func (m *Machine) LoadMemoryCard(path string) error {
	glog.Infof("Loading memory card %s", path)
	m.UnloadMemoryCard()
	return m.MemoryCard.LoadContents(path)
}

// UnloadMemoryCard saves and removes the card.
func (m *Machine) UnloadMemoryCard() {
	if !m.HasMemoryCard() {
		return
	}
	m.MemoryCard.Disconnect()
}
