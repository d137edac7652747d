package rom

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/golang/glog"
)

const (
	wavSampleRate  = 44100
	wavBitDepth    = 16
	wavChannels    = 2
	wavFormatPCM   = 1
	bytesPerPixel  = 4
	exportFileMode = 0o644
)

// Image converts a texture to an RGBA image.
func (t Texture) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, p := range t.Pixels {
		o := i * bytesPerPixel
		img.Pix[o] = uint8(p)
		img.Pix[o+1] = uint8(p >> 8)
		img.Pix[o+2] = uint8(p >> 16)
		img.Pix[o+3] = uint8(p >> 24)
	}
	return img
}

// WritePNG encodes the texture as PNG.
func (t Texture) WritePNG(w io.Writer) error {
	return png.Encode(w, t.Image())
}

// WriteWAV encodes the sound as 16-bit stereo PCM at 44100 Hz.
func (s Sound) WriteWAV(w io.WriteSeeker) error {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: wavChannels, SampleRate: wavSampleRate},
		Data:           make([]int, 0, len(s.Samples)*wavChannels),
		SourceBitDepth: wavBitDepth,
	}
	for _, v := range s.Samples {
		buf.Data = append(buf.Data, int(int16(v)), int(int16(v>>16)))
	}
	enc := wav.NewEncoder(w, wavSampleRate, wavBitDepth, wavChannels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return enc.Close()
}

// Export writes every texture as texture-N.png and every sound as
// sound-N.wav into dir, and returns the written paths.
func Export(c *Container, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for i, t := range c.Textures {
		path := filepath.Join(dir, fmt.Sprintf("texture-%d.png", i))
		if err := writeFile(path, func(f *os.File) error { return t.WritePNG(f) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	for i, s := range c.Sounds {
		path := filepath.Join(dir, fmt.Sprintf("sound-%d.wav", i))
		if err := writeFile(path, func(f *os.File) error { return s.WriteWAV(f) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	glog.Infof("Exported %d textures and %d sounds to %s", len(c.Textures), len(c.Sounds), dir)
	return paths, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, exportFileMode)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
