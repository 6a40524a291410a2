package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"gravity-cluster/pkg/driver"
	"gravity-cluster/pkg/trail"
	"gravity-cluster/pkg/viewport"
)

var helpLines = []string{
	"Space - start / pause",
	"N     - single step (paused)",
	"R     - reset",
	"P     - show / hide paths",
	"1..9  - speed",
	"Left / Right - configuration",
	"Wheel - zoom",
	"H     - hide this help",
	"Esc   - quit",
}

func bodyColor(b driver.BodyState) color.RGBA {
	return color.RGBA{b.R, b.G, b.B, 255}
}

func drawBody(screen *ebiten.Image, v viewport.Viewport, b driver.BodyState) {
	x, y := v.ToScreen(b.X, b.Y)
	r := v.Radius(b.Diameter)
	if !v.Visible(x, y, r) {
		return
	}
	vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r), bodyColor(b), true)
	vector.StrokeCircle(screen, float32(x), float32(y), float32(r), 1, borderColor, true)
}

func drawPath(screen *ebiten.Image, v viewport.Viewport, path []trail.Point, clr color.RGBA) {
	for i := 1; i < len(path); i++ {
		x0, y0 := v.ToScreen(path[i-1].X, path[i-1].Y)
		x1, y1 := v.ToScreen(path[i].X, path[i].Y)
		if !v.Visible(x0, y0, 0) && !v.Visible(x1, y1, 0) {
			continue
		}
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, clr, true)
	}
}

func drawText(screen *ebiten.Image, s string, x, y int, clr color.Color) {
	text.Draw(screen, s, basicfont.Face7x13, x, y, clr)
}

func drawButton(screen *ebiten.Image, r viewport.Rect, label string, active, disabled, hover bool) {
	bg := color.RGBA{20, 20, 20, 200}
	textColor := color.RGBA{240, 240, 240, 255}
	if disabled {
		bg = color.RGBA{60, 60, 60, 160}
		textColor = color.RGBA{160, 160, 160, 200}
	} else {
		if active {
			bg = color.RGBA{60, 120, 60, 220}
		}
		if hover {
			if active {
				bg = color.RGBA{100, 190, 100, 240}
			} else {
				bg = color.RGBA{90, 90, 90, 230}
			}
		}
	}
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), bg, false)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, color.RGBA{40, 40, 40, 120}, false)

	charW := 7
	xText := r.X + (r.W-len(label)*charW)/2
	yText := r.Y + (r.H+8)/2
	drawText(screen, label, xText, yText, textColor)
}

func drawHelp(screen *ebiten.Image) {
	pad, charW, lineH := 6, 7, 14
	maxLen := 0
	for _, l := range helpLines {
		maxLen = max(maxLen, len(l))
	}
	w := maxLen*charW + pad*2
	h := len(helpLines)*lineH + pad*2
	x, y := 12, 110

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), color.RGBA{10, 10, 20, 200}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, color.RGBA{30, 30, 40, 160}, false)
	for i, l := range helpLines {
		drawText(screen, l, x+pad, y+pad+(i+1)*lineH-2, color.RGBA{220, 220, 220, 255})
	}
	ebitenutil.DebugPrintAt(screen, "H toggles help", x, y+h+4)
}

// bodyAt returns the topmost body whose disc contains the cursor.
func bodyAt(v viewport.Viewport, bodies []driver.BodyState, mx, my int) (driver.BodyState, bool) {
	for i := len(bodies) - 1; i >= 0; i-- {
		b := bodies[i]
		x, y := v.ToScreen(b.X, b.Y)
		if math.Hypot(float64(mx)-x, float64(my)-y) <= v.Radius(b.Diameter) {
			return b, true
		}
	}
	return driver.BodyState{}, false
}

func drawTooltip(screen *ebiten.Image, b driver.BodyState, mx, my int) {
	name := b.Name
	if name == "" {
		name = fmt.Sprintf("body %d", b.Index)
	}
	lines := []string{
		name,
		fmt.Sprintf("mass %.4g  diameter %.4g", b.Mass, b.Diameter),
		fmt.Sprintf("pos (%.2f, %.2f)", b.X, b.Y),
		fmt.Sprintf("vel (%.2f, %.2f)", b.VX, b.VY),
	}
	pad, charW, lineH := 6, 7, 14
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	w := maxLen*charW + pad*2
	h := len(lines)*lineH + pad*2

	x, y := mx+14, my+14
	bounds := screen.Bounds()
	if x+w > bounds.Dx() {
		x = mx - w - 4
	}
	if y+h > bounds.Dy() {
		y = my - h - 4
	}
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), color.RGBA{20, 20, 20, 220}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, bodyColor(b), false)
	for i, l := range lines {
		drawText(screen, l, x+pad, y+pad+(i+1)*lineH-2, color.RGBA{230, 230, 230, 255})
	}
}
