package vircon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/jyane/vircon/rom"
)

// Memory card controller local ports.
const (
	MemoryCardPortConnected = iota

	memoryCardPorts
)

// MemoryCardController maps a memory card file on the memory bus. Writes
// mark the card dirty; dirty contents are written back to the file on the
// next frame change and when the card is disconnected.
type MemoryCardController struct {
	RAM

	Path  string
	dirty bool
	// saveFailed is set once a write-back of the current changes has failed.
	saveFailed bool
}

// Connected reports whether a card is inserted.
func (m *MemoryCardController) Connected() bool {
	return m.Size() != 0
}

// CreateFile writes an empty card to path, creating its folder.
func (m *MemoryCardController) CreateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create memory card: %w", err)
	}
	data := rom.EncodeMemoryCard(nil)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to create memory card: %w", err)
	}
	return nil
}

// LoadContents reads and connects the card stored at path.
func (m *MemoryCardController) LoadContents(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read memory card: %w", err)
	}
	words, err := rom.DecodeMemoryCard(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	m.data = make([]Word, len(words))
	for i, w := range words {
		m.data[i] = Word(w)
	}
	m.Path = path
	m.dirty = false
	m.saveFailed = false
	return nil
}

// SaveContents writes the card back to its file.
func (m *MemoryCardController) SaveContents() error {
	words := make([]uint32, len(m.data))
	for i, w := range m.data {
		words[i] = uint32(w)
	}
	if err := os.WriteFile(m.Path, rom.EncodeMemoryCard(words), 0o644); err != nil {
		return fmt.Errorf("failed to save memory card: %w", err)
	}
	m.dirty = false
	m.saveFailed = false
	return nil
}

// Disconnect saves pending changes and removes the card.
func (m *MemoryCardController) Disconnect() {
	if m.dirty {
		if err := m.SaveContents(); err != nil {
			glog.Warningf("%v", err)
		}
	}
	m.data = nil
	m.Path = ""
	m.dirty = false
	m.saveFailed = false
}

// ChangeFrame flushes pending changes to the file. A failing save is
// retried every frame but only reported once until the card is saved.
func (m *MemoryCardController) ChangeFrame() {
	if !m.dirty {
		return
	}
	if err := m.SaveContents(); err != nil {
		if !m.saveFailed {
			glog.Warningf("%v", err)
		}
		m.saveFailed = true
	}
}

// SaveFailed reports whether the last write-back attempt failed.
func (m *MemoryCardController) SaveFailed() bool {
	return m.saveFailed
}

// Reset does nothing: card contents persist across resets.
func (m *MemoryCardController) Reset() {}

// WriteAddress writes a word and marks the card dirty.
func (m *MemoryCardController) WriteAddress(local int32, value Word) bool {
	if !m.RAM.WriteAddress(local, value) {
		return false
	}
	m.dirty = true
	return true
}

// Dirty reports whether there are changes not yet saved.
func (m *MemoryCardController) Dirty() bool {
	return m.dirty
}

// Ports returns the control bus view of the controller.
func (m *MemoryCardController) Ports() Slave {
	return memoryCardControl{m}
}

type memoryCardControl struct {
	m *MemoryCardController
}

func (p memoryCardControl) ReadAddress(local int32) (Word, bool) {
	if local == MemoryCardPortConnected {
		return BoolWord(p.m.Connected()), true
	}
	return 0, false
}

func (p memoryCardControl) WriteAddress(local int32, value Word) bool {
	return false
}
