// Package trail keeps the recent motion path of every body.
package trail

import "gravity-cluster/pkg/physics"

// Point is a position in world coordinates.
type Point struct {
	X, Y float64
}

// Tracker stores up to Max frames; each frame holds one point per body.
// The oldest frame is dropped first. Not safe for concurrent use.
type Tracker struct {
	max    int
	frames [][]Point
}

// NewTracker keeps at most max frames. max <= 0 keeps nothing.
func NewTracker(max int) *Tracker {
	return &Tracker{max: max}
}

// Record appends one frame taken from the bodies' positions.
func (t *Tracker) Record(bodies []physics.Body) {
	if t.max <= 0 {
		return
	}
	frame := make([]Point, len(bodies))
	for i, b := range bodies {
		p := b.Position()
		frame[i] = Point{X: p.X(), Y: p.Y()}
	}
	if len(t.frames) >= t.max {
		copy(t.frames, t.frames[1:])
		t.frames = t.frames[:len(t.frames)-1]
	}
	t.frames = append(t.frames, frame)
}

// Path returns the recorded points of body i, oldest first.
func (t *Tracker) Path(i int) []Point {
	path := make([]Point, 0, len(t.frames))
	for _, f := range t.frames {
		if i < len(f) {
			path = append(path, f[i])
		}
	}
	return path
}

// Len returns the number of frames held.
func (t *Tracker) Len() int { return len(t.frames) }

func (t *Tracker) Max() int { return t.max }

// Clear drops every frame.
func (t *Tracker) Clear() { t.frames = nil }
