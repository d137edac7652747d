package vircon

// RNG local ports.
const (
	RNGPortCurrentValue = iota
)

// RNG is a Park-Miller minimal standard generator.
type RNG struct {
	CurrentValue int32
}

const (
	rngMultiplier = 48271
	rngModulus    = 0x7FFFFFFF
)

// ChangeFrame does nothing: the generator only advances when read.
func (r *RNG) ChangeFrame() {}

// Reset seeds the generator with 1.
func (r *RNG) Reset() {
	r.CurrentValue = 1
}

// ReadAddress returns the next value of the sequence.
func (r *RNG) ReadAddress(local int32) (Word, bool) {
	if local != RNGPortCurrentValue {
		return 0, false
	}
	r.CurrentValue = int32((int64(r.CurrentValue) * rngMultiplier) % rngModulus)
	return IntegerWord(r.CurrentValue), true
}

// WriteAddress sets the seed. Seeds are folded into 1..modulus-1, since a
// zero seed would lock the sequence at 0.
func (r *RNG) WriteAddress(local int32, value Word) bool {
	if local != RNGPortCurrentValue {
		return false
	}
	seed := value.AsInteger() % rngModulus
	if seed <= 0 {
		seed += rngModulus - 1
	}
	r.CurrentValue = seed
	return true
}
