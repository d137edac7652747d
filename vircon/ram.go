package vircon

// RAM is the main read/write memory of the console.
type RAM struct {
	data []Word
}

// NewRAM creates a RAM of the given size in words.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]Word, size)}
}

// Size returns the size in words.
func (r *RAM) Size() int {
	return len(r.data)
}

// ReadAddress reads a word.
func (r *RAM) ReadAddress(local int32) (Word, bool) {
	if local < 0 || int(local) >= len(r.data) {
		return 0, false
	}
	return r.data[local], true
}

// WriteAddress writes a word.
func (r *RAM) WriteAddress(local int32, value Word) bool {
	if local < 0 || int(local) >= len(r.data) {
		return false
	}
	r.data[local] = value
	return true
}

// ClearContents sets every word to 0.
func (r *RAM) ClearContents() {
	clear(r.data)
}

// ROM is a read-only memory whose contents are replaced as a whole.
type ROM struct {
	data []Word
}

// Connect replaces the contents. The slice is owned by the ROM afterwards.
func (r *ROM) Connect(data []Word) {
	r.data = data
}

// Disconnect releases the contents.
func (r *ROM) Disconnect() {
	r.data = nil
}

// Size returns the size in words, 0 when empty.
func (r *ROM) Size() int {
	return len(r.data)
}

// ReadAddress reads a word.
func (r *ROM) ReadAddress(local int32) (Word, bool) {
	if local < 0 || int(local) >= len(r.data) {
		return 0, false
	}
	return r.data[local], true
}

// WriteAddress always fails: ROM is read only.
func (r *ROM) WriteAddress(local int32, value Word) bool {
	return false
}
