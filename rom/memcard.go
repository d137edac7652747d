package rom

import "fmt"

// DecodeMemoryCard validates the contents of a memory card file and
// returns its words.
func DecodeMemoryCard(data []byte) ([]uint32, error) {
	if len(data) != MemoryCardSize {
		return nil, fmt.Errorf("memory card: file size is %d bytes, expected %d: %w", len(data), MemoryCardSize, ErrFormat)
	}
	if string(data[:signatureSize]) != SignatureMemoryCard {
		return nil, fmt.Errorf("memory card: %w", ErrSignature)
	}
	r := reader{data: data, off: signatureSize}
	return r.words(MemoryCardWords), nil
}

// EncodeMemoryCard builds the contents of a memory card file.
func EncodeMemoryCard(words []uint32) []byte {
	w := &writer{}
	w.Grow(MemoryCardSize)
	w.fixed(SignatureMemoryCard, signatureSize)
	w.words(words)
	if n := MemoryCardSize - w.Len(); n > 0 {
		w.fixed("", n)
	}
	return w.Bytes()[:MemoryCardSize]
}
