package vircon

import "time"

// A frame runs once this much credit is pending.
const frameThreshold = 0.9

// FramePacer turns elapsed wall time into a number of whole frames to run
// at FramesPerSecond.
type FramePacer struct {
	pending float64
	last    time.Time
}

// NewFramePacer creates a pacer with one frame already due.
func NewFramePacer(now time.Time) *FramePacer {
	return &FramePacer{pending: 1, last: now}
}

// Tick accounts for the time elapsed up to now and returns how many frames
// should run.
func (p *FramePacer) Tick(now time.Time) int {
	p.pending += now.Sub(p.last).Seconds() * FramesPerSecond
	p.last = now
	frames := 0
	for p.pending >= frameThreshold {
		frames++
		p.pending = max(0, p.pending-1)
	}
	return frames
}

// Skip discards the time elapsed up to now, e.g. while the window was
// inactive.
func (p *FramePacer) Skip(now time.Time) {
	p.last = now
}

// Pending returns the accumulated frame credit.
func (p *FramePacer) Pending() float64 {
	return p.pending
}
