// Package romfile reads ROM files from disk. A ROM may be stored as is or
// packed in a zip, 7z, rar, gzip or tar.gz archive, in which case the first
// entry with a ROM extension is used.
package romfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// Extensions of Vircon ROM files.
var Extensions = []string{".v32"}

// MaxSize bounds the bytes read from a single ROM.
const MaxSize = 1536 << 20

var (
	ErrNoROM       = errors.New("no ROM file found in archive")
	ErrUnsupported = errors.New("unsupported file format")
	ErrTooLarge    = errors.New("file exceeds maximum size")
)

type format int

const (
	formatUnknown format = iota
	formatRaw
	formatZip
	format7z
	formatGzip
	formatRar
)

func (f format) String() string {
	return [...]string{"unknown", "raw", "zip", "7z", "gzip", "rar"}[f]
}

var magics = []struct {
	prefix []byte
	format format
}{
	{[]byte{0x50, 0x4B, 0x03, 0x04}, formatZip},
	{[]byte{0x50, 0x4B, 0x05, 0x06}, formatZip},
	{[]byte("Rar!"), formatRar},
	{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, format7z},
	{[]byte{0x1F, 0x8B}, formatGzip},
}

// Load reads the ROM at path and returns its contents with the name of the
// file they came from.
func Load(path string, extensions []string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	kind := detect(header[:n], path, extensions)
	glog.V(1).Infof("%s detected as %v", path, kind)

	switch kind {
	case formatRaw:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", err
		}
		data, err := readLimited(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return data, filepath.Base(path), nil
	case formatZip:
		return fromZip(path, extensions)
	case format7z:
		return from7z(path, extensions)
	case formatGzip:
		return fromGzip(path, extensions)
	case formatRar:
		return fromRar(path, extensions)
	}
	return nil, "", fmt.Errorf("%s: %w", path, ErrUnsupported)
}

func detect(header []byte, path string, extensions []string) format {
	for _, m := range magics {
		if bytes.HasPrefix(header, m.prefix) {
			return m.format
		}
	}
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return formatZip
	case strings.HasSuffix(lower, ".7z"):
		return format7z
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".tgz"):
		return formatGzip
	case strings.HasSuffix(lower, ".rar"):
		return formatRar
	case hasExtension(lower, extensions):
		return formatRaw
	}
	return formatUnknown
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
