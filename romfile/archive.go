package romfile

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

func readEntry(name string, open func() (io.ReadCloser, error)) ([]byte, string, error) {
	rc, err := open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s in archive: %w", name, err)
	}
	defer rc.Close()
	data, err := readLimited(rc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, filepath.Base(name), nil
}

func fromZip(path string, extensions []string) ([]byte, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && hasExtension(f.Name, extensions) {
			return readEntry(f.Name, f.Open)
		}
	}
	return nil, "", ErrNoROM
}

func from7z(path string, extensions []string) ([]byte, string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && hasExtension(f.Name, extensions) {
			return readEntry(f.Name, f.Open)
		}
	}
	return nil, "", ErrNoROM
}

func fromRar(path string, extensions []string) ([]byte, string, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()
	for {
		h, err := r.Next()
		if err == io.EOF {
			return nil, "", ErrNoROM
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read rar entry: %w", err)
		}
		if h.IsDir || !hasExtension(h.Name, extensions) {
			continue
		}
		data, err := readLimited(r)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", h.Name, err)
		}
		return data, filepath.Base(h.Name), nil
	}
}

// fromGzip reads a tar.gz archive, or a single gzipped ROM.
func fromGzip(path string, extensions []string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gr.Close()

	name := filepath.Base(path)
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return fromTar(gr, extensions)
	}
	data, err := readLimited(gr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return data, strings.TrimSuffix(name, filepath.Ext(name)), nil
}

func fromTar(r io.Reader, extensions []string) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil, "", ErrNoROM
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}
		if h.Typeflag != tar.TypeReg || !hasExtension(h.Name, extensions) {
			continue
		}
		data, err := readLimited(tr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", h.Name, err)
		}
		return data, filepath.Base(h.Name), nil
	}
}
