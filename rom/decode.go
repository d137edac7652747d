package rom

import (
	"bytes"
	"encoding/binary"

	"github.com/golang/glog"
)

// reader is a little endian cursor over the file contents. The decoder
// checks bounds before every read.
type reader struct {
	data []byte
	off  int
}

func (r *reader) word() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += wordSize
	return v
}

func (r *reader) bytes(n int) []byte {
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) words(n int) []uint32 {
	w := make([]uint32, n)
	for i := range w {
		w[i] = r.word()
	}
	return w
}

type decoder struct {
	kind   Kind
	limits Limits
	r      reader
}

func (d *decoder) failValues(step int, reason string, expected, actual uint64) *FormatError {
	return &FormatError{Kind: d.kind, Step: step, Reason: reason, Expected: expected, Actual: actual, HasValues: true}
}

// Decode validates data as a container of the given kind and returns its
// contents. Nothing is returned unless every check passes.
func Decode(data []byte, kind Kind) (*Container, error) {
	return DecodeLimits(data, kind, LimitsFor(kind))
}

// DecodeLimits is Decode with explicit limits.
func DecodeLimits(data []byte, kind Kind, limits Limits) (*Container, error) {
	d := &decoder{kind: kind, limits: limits, r: reader{data: data}}
	h, err := d.header()
	if err != nil {
		return nil, err
	}
	c := &Container{Kind: kind, Header: *h}
	if c.Program, err = d.program(h.Program); err != nil {
		return nil, err
	}
	if c.Textures, err = d.video(h); err != nil {
		return nil, err
	}
	if c.Sounds, err = d.audio(h); err != nil {
		return nil, err
	}
	return c, nil
}

// DecodeHeader validates only the global header and section layout.
func DecodeHeader(data []byte, kind Kind) (*Header, error) {
	d := &decoder{kind: kind, limits: LimitsFor(kind), r: reader{data: data}}
	return d.header()
}

func (d *decoder) header() (*Header, error) {
	size := len(d.r.data)
	if size%wordSize != 0 {
		return nil, d.failValues(StepSize, "file size must be a multiple of 4", 0, uint64(size%wordSize))
	}
	if size < HeaderSize {
		return nil, d.failValues(StepSize, "file is too small", HeaderSize, uint64(size))
	}

	h := &Header{Signature: string(d.r.bytes(signatureSize))}
	other := Cartridge
	if d.kind == Cartridge {
		other = Bios
	}
	if h.Signature == signature(other) {
		return nil, &FormatError{Kind: d.kind, Step: StepSignature, Reason: "is it a " + other.String() + " instead", err: ErrWrongKind}
	}
	if h.Signature != signature(d.kind) {
		return nil, &FormatError{Kind: d.kind, Step: StepSignature, Reason: "file does not have a valid signature", err: ErrSignature}
	}

	h.Version = d.r.word()
	h.Revision = d.r.word()
	if h.Version > Version || h.Revision > Revision {
		return nil, &FormatError{Kind: d.kind, Step: StepVersion, Reason: "please use an updated emulator", err: ErrVersion,
			Expected: Version<<16 | Revision, Actual: uint64(h.Version)<<16 | uint64(h.Revision), HasValues: true}
	}

	title := d.r.bytes(titleSize)
	title = title[:titleSize-1]
	if i := bytes.IndexByte(title, 0); i >= 0 {
		title = title[:i]
	}
	h.Title = string(title)
	h.ROMVersion = d.r.word()
	h.ROMRevision = d.r.word()
	h.Textures = d.r.word()
	h.Sounds = d.r.word()
	h.Program = Section{d.r.word(), d.r.word()}
	h.Video = Section{d.r.word(), d.r.word()}
	h.Audio = Section{d.r.word(), d.r.word()}
	d.r.off = HeaderSize
	glog.Infof("%v title: %q", d.kind, h.Title)

	if err := d.counts(h); err != nil {
		return nil, err
	}
	if err := d.layout(h, size); err != nil {
		return nil, err
	}
	return h, nil
}

func (d *decoder) counts(h *Header) error {
	if d.kind == Bios {
		if h.Textures != 1 {
			return d.failValues(StepCounts, "a BIOS video ROM should have exactly 1 texture", 1, uint64(h.Textures))
		}
		if h.Sounds != 1 {
			return d.failValues(StepCounts, "a BIOS audio ROM should have exactly 1 sound", 1, uint64(h.Sounds))
		}
		return nil
	}
	glog.Infof("Video ROM contains %d textures", h.Textures)
	if uint64(h.Textures) > d.limits.Textures {
		return d.failValues(StepCounts, "video ROM contains too many textures", d.limits.Textures, uint64(h.Textures))
	}
	glog.Infof("Audio ROM contains %d sounds", h.Sounds)
	if uint64(h.Sounds) > d.limits.Sounds {
		return d.failValues(StepCounts, "audio ROM contains too many sounds", d.limits.Sounds, uint64(h.Sounds))
	}
	return nil
}

func (d *decoder) layout(h *Header, size int) error {
	if h.Program.Offset != HeaderSize {
		return d.failValues(StepLayout, "program ROM is not located after file header", HeaderSize, uint64(h.Program.Offset))
	}
	if uint64(h.Video.Offset) != h.Program.End() {
		return d.failValues(StepLayout, "video ROM is not located after program ROM", h.Program.End(), uint64(h.Video.Offset))
	}
	if uint64(h.Audio.Offset) != h.Video.End() {
		return d.failValues(StepLayout, "audio ROM is not located after video ROM", h.Video.End(), uint64(h.Audio.Offset))
	}
	if h.Audio.End() != uint64(size) {
		return d.failValues(StepLayout, "file size does not match indicated ROM contents", h.Audio.End(), uint64(size))
	}
	return nil
}

// fits checks that a sub-section of n bytes fits in what is left of
// its section.
func (d *decoder) fits(step int, what string, end uint64, n uint64) error {
	if uint64(d.r.off)+n > end {
		return d.failValues(step, what+" overruns its section", end, uint64(d.r.off)+n)
	}
	return nil
}

func (d *decoder) program(s Section) ([]uint32, error) {
	if err := d.fits(StepProgram, "binary header", s.End(), BinaryHeaderSize); err != nil {
		return nil, err
	}
	if sig := string(d.r.bytes(signatureSize)); sig != SignatureBinary {
		return nil, &FormatError{Kind: d.kind, Step: StepProgram, Reason: "binary does not have a valid signature", err: ErrSignature}
	}
	n := d.r.word()
	glog.Infof("Program ROM is %d words", n)
	limit := d.limits.ProgramWords
	if n < 1 || uint64(n) > limit {
		return nil, d.failValues(StepProgram, "program ROM does not have a correct size", limit, uint64(n))
	}
	if uint64(d.r.off)+uint64(n)*wordSize != s.End() {
		return nil, d.failValues(StepProgram, "program ROM length does not match its contents", s.End(), uint64(d.r.off)+uint64(n)*wordSize)
	}
	return d.r.words(int(n)), nil
}

func (d *decoder) video(h *Header) ([]Texture, error) {
	textures := make([]Texture, 0, h.Textures)
	for i := uint32(0); i < h.Textures; i++ {
		if err := d.fits(StepVideo, "texture header", h.Video.End(), TextureHeaderSize); err != nil {
			return nil, err
		}
		if sig := string(d.r.bytes(signatureSize)); sig != SignatureTexture {
			return nil, &FormatError{Kind: d.kind, Step: StepVideo, Reason: "texture does not have a valid signature", err: ErrSignature}
		}
		w, ht := d.r.word(), d.r.word()
		glog.Infof("Texture %d: %d x %d pixels", i, w, ht)
		if uint64(w) > d.limits.TextureSize || uint64(ht) > d.limits.TextureSize {
			return nil, d.failValues(StepVideo, "texture does not have correct dimensions", d.limits.TextureSize, uint64(max(w, ht)))
		}
		pixels := uint64(w) * uint64(ht)
		if err := d.fits(StepVideo, "texture pixels", h.Video.End(), pixels*wordSize); err != nil {
			return nil, err
		}
		textures = append(textures, Texture{Width: int(w), Height: int(ht), Pixels: d.r.words(int(pixels))})
	}
	if uint64(d.r.off) != h.Video.End() {
		return nil, d.failValues(StepVideo, "video ROM length does not match its contents", h.Video.End(), uint64(d.r.off))
	}
	return textures, nil
}

func (d *decoder) audio(h *Header) ([]Sound, error) {
	perSound := d.limits.SoundSamples
	var total uint64
	sounds := make([]Sound, 0, h.Sounds)
	for i := uint32(0); i < h.Sounds; i++ {
		if err := d.fits(StepAudio, "sound header", h.Audio.End(), SoundHeaderSize); err != nil {
			return nil, err
		}
		if sig := string(d.r.bytes(signatureSize)); sig != SignatureSound {
			return nil, &FormatError{Kind: d.kind, Step: StepAudio, Reason: "sound does not have a valid signature", err: ErrSignature}
		}
		n := d.r.word()
		glog.Infof("Sound %d: %d samples (%.2f seconds)", i, n, float64(n)/44100)
		if n < 1 || uint64(n) > perSound {
			return nil, d.failValues(StepAudio, "sound does not have a correct length", perSound, uint64(n))
		}
		total += uint64(n)
		if total > d.limits.TotalSoundSamples {
			return nil, d.failValues(StepAudio, "sounds contain too many total samples", d.limits.TotalSoundSamples, total)
		}
		if err := d.fits(StepAudio, "sound samples", h.Audio.End(), uint64(n)*wordSize); err != nil {
			return nil, err
		}
		sounds = append(sounds, Sound{Samples: d.r.words(int(n))})
	}
	if uint64(d.r.off) != h.Audio.End() {
		return nil, d.failValues(StepAudio, "audio ROM length does not match its contents", h.Audio.End(), uint64(d.r.off))
	}
	return sounds, nil
}
