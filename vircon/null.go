package vircon

// NullController sinks control bus accesses to ports no device owns.
// Reads return 0 and writes are discarded, so they never fault.
type NullController struct{}

func (NullController) ReadAddress(local int32) (Word, bool) { return 0, true }

func (NullController) WriteAddress(local int32, value Word) bool { return true }
