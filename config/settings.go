// Package config reads the emulator settings and the gamepad controls from
// their XML files. A file that is missing or malformed is reported as an
// error together with the defaults to use instead.
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/jyane/vircon/input"
)

// File names inside the emulator folder.
const (
	SettingsFile = "Config-Settings.xml"
	ControlsFile = "Config-Controls.xml"
)

const (
	DefaultBiosFile     = "StandardBios.v32"
	DefaultAudioBuffers = 4
	MinAudioBuffers     = 2
	MaxAudioBuffers     = 16

	minSettingsVersion = 1
	maxSettingsVersion = 4
)

var ErrVersion = errors.New("unsupported document version")

// Settings are the emulator settings.
type Settings struct {
	// BiosFile is a file name inside the Bios folder.
	BiosFile       string
	AudioBuffers   int
	GamepadPaths   [input.Ports]string
	CartridgePath  string
	MemoryCardPath string
}

// DefaultSettings are used when the settings file cannot be loaded.
func DefaultSettings(folder string) Settings {
	return Settings{
		BiosFile:       DefaultBiosFile,
		AudioBuffers:   DefaultAudioBuffers,
		CartridgePath:  filepath.Join(folder, "Cartridge", "CartridgeROM.v32"),
		MemoryCardPath: filepath.Join(folder, "Card", "MemoryCardRAM.memc"),
	}
}

// BiosPath returns the path of the BIOS file inside folder.
func (s Settings) BiosPath(folder string) string {
	return filepath.Join(folder, "Bios", s.BiosFile)
}

type pathAttr struct {
	Path *string `xml:"path,attr"`
}

type settingsDoc struct {
	XMLName xml.Name `xml:"settings"`
	Version *int     `xml:"version,attr"`
	Bios    *struct {
		File *string `xml:"file,attr"`
	} `xml:"bios"`
	AudioBuffers *struct {
		Number *int `xml:"number,attr"`
	} `xml:"audio-buffers"`
	Gamepad1  *pathAttr `xml:"gamepad-1"`
	Gamepad2  *pathAttr `xml:"gamepad-2"`
	Gamepad3  *pathAttr `xml:"gamepad-3"`
	Gamepad4  *pathAttr `xml:"gamepad-4"`
	LoadPaths *struct {
		MemoryCard *pathAttr `xml:"memory-card"`
		Cartridge  *pathAttr `xml:"cartridge"`
	} `xml:"load-paths"`
}

func checkVersion(version *int, min, max int) error {
	if version == nil {
		return errors.New("cannot find attribute 'version' inside the root element")
	}
	if *version < min || *version > max {
		return fmt.Errorf("document version is %d, only %d to %d are supported: %w", *version, min, max, ErrVersion)
	}
	return nil
}

func requiredPath(p *pathAttr, element string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("cannot find element <%s>", element)
	}
	if p.Path == nil {
		return "", fmt.Errorf("cannot find attribute 'path' inside <%s>", element)
	}
	return *p.Path, nil
}

// LoadSettings reads the settings file at path. On failure it returns the
// defaults for folder along with the error.
func LoadSettings(path, folder string) (Settings, error) {
	glog.Infof("Loading settings from %q", path)
	s, err := loadSettings(path, folder)
	if err != nil {
		return DefaultSettings(folder), fmt.Errorf("cannot load settings file: %w", err)
	}
	return s, nil
}

func loadSettings(path, folder string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	var doc settingsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := checkVersion(doc.Version, minSettingsVersion, maxSettingsVersion); err != nil {
		return Settings{}, err
	}

	s := DefaultSettings(folder)
	if doc.Bios != nil {
		if doc.Bios.File == nil {
			return Settings{}, errors.New("cannot find attribute 'file' inside <bios>")
		}
		s.BiosFile = *doc.Bios.File
	}

	if doc.AudioBuffers == nil || doc.AudioBuffers.Number == nil {
		return Settings{}, errors.New("cannot find <audio-buffers number>")
	}
	s.AudioBuffers = max(MinAudioBuffers, min(MaxAudioBuffers, *doc.AudioBuffers.Number))

	for i, p := range []*pathAttr{doc.Gamepad1, doc.Gamepad2, doc.Gamepad3, doc.Gamepad4} {
		if s.GamepadPaths[i], err = requiredPath(p, fmt.Sprintf("gamepad-%d", i+1)); err != nil {
			return Settings{}, err
		}
	}

	if doc.LoadPaths == nil {
		return Settings{}, errors.New("cannot find element <load-paths>")
	}
	if s.MemoryCardPath, err = requiredPath(doc.LoadPaths.MemoryCard, "memory-card"); err != nil {
		return Settings{}, err
	}
	if s.CartridgePath, err = requiredPath(doc.LoadPaths.Cartridge, "cartridge"); err != nil {
		return Settings{}, err
	}
	return s, nil
}
