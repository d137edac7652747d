package vircon

import "time"

// Timer local ports.
const (
	TimerPortCurrentDate = iota
	TimerPortCurrentTime
	TimerPortFrameCounter
	TimerPortCycleCounter

	timerPorts
)

// Timer counts frames and cycles and reports the host's date and time.
type Timer struct {
	FrameCounter int32
	CycleCounter int32

	now func() time.Time
}

// NewTimer creates a timer reading the host clock.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// ChangeFrame advances the frame counter and restarts the cycle count.
func (t *Timer) ChangeFrame() {
	t.FrameCounter++
	t.CycleCounter = 0
}

// RunNextCycle counts a CPU cycle.
func (t *Timer) RunNextCycle() {
	t.CycleCounter++
}

// Reset clears both counters.
func (t *Timer) Reset() {
	t.FrameCounter = 0
	t.CycleCounter = 0
}

// ReadAddress reads a timer port. The date is packed as year<<16 | day of
// year, the time as seconds since midnight.
func (t *Timer) ReadAddress(local int32) (Word, bool) {
	switch local {
	case TimerPortCurrentDate:
		now := t.now()
		return IntegerWord(int32(now.Year())<<16 | int32(now.YearDay()-1)), true
	case TimerPortCurrentTime:
		now := t.now()
		return IntegerWord(int32(now.Hour()*3600 + now.Minute()*60 + now.Second())), true
	case TimerPortFrameCounter:
		return IntegerWord(t.FrameCounter), true
	case TimerPortCycleCounter:
		return IntegerWord(t.CycleCounter), true
	}
	return 0, false
}

// WriteAddress fails: all timer ports are read only.
func (t *Timer) WriteAddress(local int32, value Word) bool {
	return false
}
