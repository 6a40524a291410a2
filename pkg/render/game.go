// Package render draws a driver in an ebiten window.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gravity-cluster/pkg/driver"
	"gravity-cluster/pkg/viewport"
)

const (
	uiBtnW   = 84
	uiBtnH   = 28
	uiBtnPad = 12
)

var speedKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

var (
	backgroundColor = color.RGBA{0, 0, 40, 255}
	borderColor     = color.RGBA{211, 211, 211, 255}
)

type action int

const (
	actionToggle action = iota
	actionStep
	actionReset
	actionPaths
	actionNext
	actionPrev
	actionFaster
	actionSlower
)

type button struct {
	action action
	rect   viewport.Rect
}

// Options configures the window.
type Options struct {
	Width  int
	Height int
	Title  string
}

// Game implements ebiten.Game over a driver.
type Game struct {
	drv     *driver.Driver
	opts    Options
	view    viewport.Viewport
	buttons []button
	log     *slog.Logger

	showHelp bool
	status   string
}

func New(drv *driver.Driver, opts Options, log *slog.Logger) *Game {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	order := []action{actionToggle, actionStep, actionReset, actionPaths, actionNext, actionPrev, actionFaster, actionSlower}
	rects := viewport.Toolbar(opts.Width, len(order), uiBtnW, uiBtnH, uiBtnPad)
	buttons := make([]button, len(order))
	for i, a := range order {
		buttons[i] = button{action: a, rect: rects[i]}
	}
	return &Game{
		drv:      drv,
		opts:     opts,
		view:     viewport.New(opts.Width, opts.Height),
		buttons:  buttons,
		log:      log,
		showHelp: true,
	}
}

// Run opens the window and blocks until it is closed.
func Run(g *Game) error {
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	g.updateTitle()
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.do(actionToggle)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && !g.drv.Running() {
		g.do(actionStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.do(actionReset)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.do(actionPaths)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.do(actionNext)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		g.do(actionPrev)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}
	for i, k := range speedKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.setSpeed(driver.MinSpeed + i)
		}
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.view = g.view.Zoom(wy)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if b, ok := g.buttonAt(mx, my); ok {
			g.do(b.action)
		}
	}

	if err := g.drv.Frame(); err != nil {
		g.drv.Pause()
		g.status = err.Error()
		g.log.Error("step failed", "error", err)
	}
	return nil
}

func (g *Game) do(a action) {
	var err error
	switch a {
	case actionToggle:
		err = g.drv.Toggle()
	case actionStep:
		err = g.drv.StepOnce()
	case actionReset:
		err = g.drv.Reset()
	case actionPaths:
		g.drv.SetShowPaths(!g.drv.ShowPaths())
	case actionNext:
		err = g.drv.Next()
	case actionPrev:
		err = g.drv.Prev()
	case actionFaster:
		g.setSpeed(g.drv.Speed() + 1)
	case actionSlower:
		g.setSpeed(g.drv.Speed() - 1)
	}
	if err != nil {
		g.status = err.Error()
		g.log.Warn("control failed", "error", err)
		return
	}
	if a == actionReset || a == actionNext || a == actionPrev {
		g.status = ""
		g.updateTitle()
	}
}

func (g *Game) updateTitle() {
	ebiten.SetWindowTitle(g.opts.Title + " - " + g.drv.Current())
}

func (g *Game) setSpeed(level int) {
	level = min(max(level, driver.MinSpeed), driver.MaxSpeed)
	if err := g.drv.SetSpeed(level); err != nil {
		g.status = err.Error()
	}
}

func (g *Game) buttonAt(mx, my int) (button, bool) {
	for _, b := range g.buttons {
		if b.rect.Contains(mx, my) {
			return b, true
		}
	}
	return button{}, false
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	snap, err := g.drv.Snapshot()
	if err != nil {
		drawText(screen, "no configuration loaded", 12, 24, borderColor)
		return
	}

	for i, path := range g.drv.Paths() {
		if i < len(snap.Bodies) {
			drawPath(screen, g.view, path, bodyColor(snap.Bodies[i]))
		}
	}
	for _, b := range snap.Bodies {
		drawBody(screen, g.view, b)
	}

	g.drawHUD(screen, snap)
	g.drawToolbar(screen)
	if !snap.Running {
		mx, my := ebiten.CursorPosition()
		if b, ok := bodyAt(g.view, snap.Bodies, mx, my); ok {
			drawTooltip(screen, b, mx, my)
		}
	}
	if g.showHelp {
		drawHelp(screen)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.opts.Width, g.opts.Height
}

func (g *Game) drawHUD(screen *ebiten.Image, s driver.Snapshot) {
	state := "paused"
	if s.Running {
		state = "running"
	}
	lines := []string{
		fmt.Sprintf("%s (%s)", s.Configuration, state),
		fmt.Sprintf("step %d  t=%.3f", s.Step, s.Time),
		fmt.Sprintf("speed %d  dt=%g", g.drv.Speed(), s.TimeStep),
	}
	if s.Finite {
		lines = append(lines, fmt.Sprintf("E=%.6g", s.Energy))
	} else {
		lines = append(lines, "state is no longer finite")
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}
	for i, l := range lines {
		drawText(screen, l, 12, 20+i*16, borderColor)
	}
}

func (g *Game) drawToolbar(screen *ebiten.Image) {
	mx, my := ebiten.CursorPosition()
	running := g.drv.Running()
	for _, b := range g.buttons {
		label, active, disabled := g.label(b.action, running)
		drawButton(screen, b.rect, label, active, disabled, b.rect.Contains(mx, my))
	}
}

func (g *Game) label(a action, running bool) (string, bool, bool) {
	switch a {
	case actionToggle:
		if running {
			return "Pause", true, false
		}
		return "Start", false, false
	case actionStep:
		return "Step", false, running
	case actionReset:
		return "Reset", false, false
	case actionPaths:
		return "Paths", g.drv.ShowPaths(), false
	case actionNext:
		return "Next", false, len(g.drv.Names()) < 2
	case actionPrev:
		return "Prev", false, len(g.drv.Names()) < 2
	case actionFaster:
		return "Speed+", false, g.drv.Speed() >= driver.MaxSpeed
	case actionSlower:
		return "Speed-", false, g.drv.Speed() <= driver.MinSpeed
	}
	return "", false, true
}
