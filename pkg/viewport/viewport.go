// Package viewport maps simulation coordinates to window pixels and lays
// out the toolbar.
package viewport

import "math"

const (
	MinScale = 0.05
	MaxScale = 20.0

	zoomFactor = 1.1
)

// Viewport centers the origin in a Width x Height window. Simulation y
// grows upward, screen y grows downward.
type Viewport struct {
	Width  int
	Height int
	Scale  float64
}

func New(width, height int) Viewport {
	return Viewport{Width: width, Height: height, Scale: 1}
}

// ToScreen converts a simulation position to pixel coordinates.
func (v Viewport) ToScreen(x, y float64) (float64, float64) {
	return float64(v.Width)/2 + x*v.Scale, float64(v.Height)/2 - y*v.Scale
}

// ToWorld is the inverse of ToScreen.
func (v Viewport) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - float64(v.Width)/2) / v.Scale, (float64(v.Height)/2 - sy) / v.Scale
}

// Radius converts a body diameter to an on-screen radius of at least
// one pixel.
func (v Viewport) Radius(diameter float64) float64 {
	return math.Max(diameter*v.Scale/2, 1)
}

// Zoom scales by 1.1 per wheel notch, clamped to [MinScale, MaxScale].
func (v Viewport) Zoom(notches float64) Viewport {
	v.Scale = math.Min(math.Max(v.Scale*math.Pow(zoomFactor, notches), MinScale), MaxScale)
	return v
}

// Visible reports whether a disc at (sx, sy) with radius r touches the
// window.
func (v Viewport) Visible(sx, sy, r float64) bool {
	return sx+r >= 0 && sy+r >= 0 && sx-r <= float64(v.Width) && sy-r <= float64(v.Height)
}

type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(px, py int) bool {
	return px >= r.X && px <= r.X+r.W && py >= r.Y && py <= r.Y+r.H
}

// Toolbar places n buttons of size w x h along the top edge, right
// aligned, with pad pixels between them. The first rectangle is the
// rightmost.
func Toolbar(width, n, w, h, pad int) []Rect {
	rects := make([]Rect, n)
	x := width - pad - w
	for i := range rects {
		rects[i] = Rect{X: x, Y: pad, W: w, H: h}
		x -= pad + w
	}
	return rects
}

// Hit returns the index of the first rectangle containing (px, py), or -1.
func Hit(rects []Rect, px, py int) int {
	for i, r := range rects {
		if r.Contains(px, py) {
			return i
		}
	}
	return -1
}
