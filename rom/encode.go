package rom

import (
	"bytes"
	"encoding/binary"
)

type writer struct {
	bytes.Buffer
}

func (w *writer) word(v uint32) {
	var b [wordSize]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func (w *writer) words(v []uint32) {
	for _, x := range v {
		w.word(x)
	}
}

func (w *writer) fixed(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.Write(b)
}

// Encode builds the file contents of a container. The signature, counts
// and section descriptors are computed from the contents; the other header
// fields are taken from c.Header.
func Encode(c *Container) []byte {
	programLen := uint32(BinaryHeaderSize + len(c.Program)*wordSize)
	var videoLen, audioLen uint32
	for _, t := range c.Textures {
		videoLen += uint32(TextureHeaderSize + len(t.Pixels)*wordSize)
	}
	for _, s := range c.Sounds {
		audioLen += uint32(SoundHeaderSize + len(s.Samples)*wordSize)
	}
	program := Section{HeaderSize, programLen}
	video := Section{program.Offset + programLen, videoLen}
	audio := Section{video.Offset + videoLen, audioLen}

	w := &writer{}
	w.Grow(int(audio.End()))
	w.fixed(signature(c.Kind), signatureSize)
	w.word(c.Header.Version)
	w.word(c.Header.Revision)
	w.fixed(c.Header.Title, titleSize)
	w.word(c.Header.ROMVersion)
	w.word(c.Header.ROMRevision)
	w.word(uint32(len(c.Textures)))
	w.word(uint32(len(c.Sounds)))
	for _, s := range []Section{program, video, audio} {
		w.word(s.Offset)
		w.word(s.Length)
	}
	w.fixed("", HeaderSize-w.Len())

	w.fixed(SignatureBinary, signatureSize)
	w.word(uint32(len(c.Program)))
	w.words(c.Program)
	for _, t := range c.Textures {
		w.fixed(SignatureTexture, signatureSize)
		w.word(uint32(t.Width))
		w.word(uint32(t.Height))
		w.words(t.Pixels)
	}
	for _, s := range c.Sounds {
		w.fixed(SignatureSound, signatureSize)
		w.word(uint32(len(s.Samples)))
		w.words(s.Samples)
	}
	return w.Bytes()
}
