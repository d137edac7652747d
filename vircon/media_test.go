package vircon

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyane/vircon/rom"
)

func writeROM(t *testing.T, name string, c *rom.Container) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, rom.Encode(c), 0o644))
	return path
}

func testBios() *rom.Container {
	return &rom.Container{
		Kind:     rom.Bios,
		Header:   rom.Header{Version: rom.Version, Title: "Test BIOS"},
		Program:  []uint32{uint32(Instruction{OpCode: OpHLT}.Encode())},
		Textures: []rom.Texture{{Width: 1, Height: 1, Pixels: []uint32{0xFF00FF00}}},
		Sounds:   []rom.Sound{{Samples: []uint32{0x00010002}}},
	}
}

func testCartridge(title string, textures, sounds int) *rom.Container {
	c := &rom.Container{
		Kind:    rom.Cartridge,
		Header:  rom.Header{Version: rom.Version, Title: title, ROMVersion: 1, ROMRevision: 2},
		Program: []uint32{1, 2, 3},
	}
	for i := 0; i < textures; i++ {
		c.Textures = append(c.Textures, rom.Texture{Width: 2, Height: 2, Pixels: make([]uint32, 4)})
	}
	for i := 0; i < sounds; i++ {
		c.Sounds = append(c.Sounds, rom.Sound{Samples: make([]uint32, 10)})
	}
	return c
}

func TestLoadBios(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	require.NoError(t, m.LoadBios(writeROM(t, "bios.v32", testBios())))

	assert.Equal(t, 1, m.BiosROM.Size())
	require.NotNil(t, m.GPU.BiosTexture)
	assert.Equal(t, 1, m.GPU.BiosTexture.Width)
	assert.Equal(t, []Word{0xFF00FF00}, m.GPU.BiosTexture.Pixels)
	require.NotNil(t, m.SPU.BiosSound)
	assert.Equal(t, []Word{0x00010002}, m.SPU.BiosSound.Samples)
}

func TestLoadBiosErrors(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})

	err := m.LoadBios(writeROM(t, "game.v32", testCartridge("Game", 0, 0)))
	assert.ErrorIs(t, err, rom.ErrWrongKind)
	assert.ErrorIs(t, err, rom.ErrFormat)

	err = m.LoadBios(filepath.Join(t.TempDir(), "missing.v32"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, m.BiosROM.Size())
}

func TestLoadCartridge(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	require.NoError(t, m.LoadCartridge(writeROM(t, "game.v32", testCartridge("Game", 2, 3))))

	assert.True(t, m.HasCartridge())
	assert.Equal(t, 3, m.Cartridge.Size())
	assert.Equal(t, "Game", m.Cartridge.Title)
	assert.Equal(t, uint32(1), m.Cartridge.Version)
	assert.Equal(t, uint32(2), m.Cartridge.Revision)
	assert.Equal(t, "game.v32", m.Cartridge.FileName)
	assert.Len(t, m.GPU.CartridgeTextures, 2)
	assert.Len(t, m.SPU.CartridgeSounds, 3)

	// the program is mapped on the memory bus, the metadata on the control bus
	v, err := m.MemoryBus.Read(MemorySlotCartridge, 2)
	require.NoError(t, err)
	assert.Equal(t, Word(3), v)
	v, err = m.ControlBus.Read(ControlSlotCartridge, CartridgePortNumberOfSounds)
	require.NoError(t, err)
	assert.Equal(t, Word(3), v)
}

func TestLoadCartridgeFromZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	fw, err := w.Create("game.v32")
	require.NoError(t, err)
	_, err = fw.Write(rom.Encode(testCartridge("Zipped", 0, 0)))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	m := newStubMachine(t, &stubCPU{})
	require.NoError(t, m.LoadCartridge(path))
	assert.Equal(t, "Zipped", m.Cartridge.Title)
}

func TestLoadCartridgeReplaces(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	require.NoError(t, m.LoadCartridge(writeROM(t, "a.v32", testCartridge("A", 3, 1))))
	old := m.GPU.CartridgeTextures[0]

	require.NoError(t, m.LoadCartridge(writeROM(t, "b.v32", testCartridge("B", 1, 0))))
	assert.Equal(t, "B", m.Cartridge.Title)
	assert.Len(t, m.GPU.CartridgeTextures, 1)
	assert.Empty(t, m.SPU.CartridgeSounds)
	assert.Nil(t, old.Pixels)
}

func TestLoadCartridgeFailureKeepsCurrent(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	require.NoError(t, m.LoadCartridge(writeROM(t, "a.v32", testCartridge("A", 1, 1))))

	data := rom.Encode(testCartridge("Broken", 1, 1))
	path := filepath.Join(t.TempDir(), "broken.v32")
	require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0o644))

	err := m.LoadCartridge(path)
	var fe *rom.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "A", m.Cartridge.Title)
	assert.Len(t, m.GPU.CartridgeTextures, 1)
	assert.Len(t, m.SPU.CartridgeSounds, 1)
}

func TestUnloadCartridge(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	m.UnloadCartridge()

	require.NoError(t, m.LoadCartridge(writeROM(t, "a.v32", testCartridge("A", 1, 1))))
	m.UnloadCartridge()
	assert.False(t, m.HasCartridge())
	assert.Empty(t, m.Cartridge.Title)
	assert.Zero(t, m.Cartridge.NumberOfTextures)
	assert.Empty(t, m.GPU.CartridgeTextures)
	assert.Empty(t, m.SPU.CartridgeSounds)

	v, err := m.ControlBus.Read(ControlSlotCartridge, CartridgePortConnected)
	require.NoError(t, err)
	assert.Equal(t, Word(0), v)
}

func TestMemoryCard(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	path := filepath.Join(t.TempDir(), "card.memc")
	require.NoError(t, m.CreateMemoryCard(path))
	assert.False(t, m.HasMemoryCard())

	require.NoError(t, m.LoadMemoryCard(path))
	assert.True(t, m.HasMemoryCard())
	assert.Equal(t, MemoryCardSize, m.MemoryCard.Size())
	v, err := m.ControlBus.Read(ControlSlotMemoryCard, MemoryCardPortConnected)
	require.NoError(t, err)
	assert.Equal(t, Word(1), v)

	require.NoError(t, m.MemoryBus.Write(MemorySlotMemoryCard, 10, 0xABCD))
	assert.True(t, m.MemoryCard.Dirty())
	m.MemoryCard.ChangeFrame()
	assert.False(t, m.MemoryCard.Dirty())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	words, err := rom.DecodeMemoryCard(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xABCD), words[10])
}

func TestMemoryCardSavedOnUnload(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	path := filepath.Join(t.TempDir(), "card.memc")
	require.NoError(t, m.CreateMemoryCard(path))
	require.NoError(t, m.LoadMemoryCard(path))
	require.NoError(t, m.MemoryBus.Write(MemorySlotMemoryCard, 0, 42))

	m.UnloadMemoryCard()
	assert.False(t, m.HasMemoryCard())
	_, err := m.MemoryBus.Read(MemorySlotMemoryCard, 0)
	assert.ErrorIs(t, err, ErrAccessRejected)

	require.NoError(t, m.LoadMemoryCard(path))
	v, _ := m.MemoryCard.ReadAddress(0)
	assert.Equal(t, Word(42), v)
}

func TestLoadMemoryCardInvalid(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	path := filepath.Join(t.TempDir(), "card.memc")
	require.NoError(t, os.WriteFile(path, []byte("V32-MEMC"), 0o644))
	assert.ErrorIs(t, m.LoadMemoryCard(path), rom.ErrFormat)
	assert.False(t, m.HasMemoryCard())
}

func TestMemoryCardSaveFailureRetries(t *testing.T) {
	m := newStubMachine(t, &stubCPU{})
	dir := t.TempDir()
	path := filepath.Join(dir, "card.memc")
	require.NoError(t, m.CreateMemoryCard(path))
	require.NoError(t, m.LoadMemoryCard(path))

	m.MemoryCard.Path = filepath.Join(dir, "missing", "card.memc")
	require.NoError(t, m.MemoryBus.Write(MemorySlotMemoryCard, 3, 7))
	for i := 0; i < 3; i++ {
		m.MemoryCard.ChangeFrame()
		assert.True(t, m.MemoryCard.Dirty())
		assert.True(t, m.MemoryCard.SaveFailed())
	}

	m.MemoryCard.Path = path
	m.MemoryCard.ChangeFrame()
	assert.False(t, m.MemoryCard.Dirty())
	assert.False(t, m.MemoryCard.SaveFailed())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	words, err := rom.DecodeMemoryCard(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), words[3])
}
