package route

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tracker is the waypoint-following state machine. State i means segment i is
// being followed; state len(segments) is terminal.
type Tracker struct {
	Index    int     `json:"current_waypoint_index"`
	Progress float64 `json:"step_progress"` // percent of the current segment, [0, 100]
}

// Done reports whether every one of n segments has been reached.
func (t Tracker) Done(n int) bool { return t.Index >= n }

// Reset returns the tracker to the first segment.
func (t *Tracker) Reset() {
	t.Index = 0
	t.Progress = 0
}

// Follow updates progress for a vehicle at pos. When pos is within threshold
// of the current segment's end the tracker advances, resets Progress to 0 and
// returns true. It is a no-op once the tracker is done.
func (t *Tracker) Follow(pos mgl64.Vec3, segments []Segment, threshold float64) bool {
	if t.Index < 0 || t.Index >= len(segments) {
		return false
	}
	seg := segments[t.Index]

	if pos.Sub(seg.To).Len() < threshold {
		t.Index++
		t.Progress = 0
		return true
	}

	total := seg.Length()
	if total == 0 {
		t.Progress = 100
		return false
	}
	traveled := pos.Sub(seg.From).Len()
	t.Progress = math.Min(100, traveled/total*100)
	return false
}
