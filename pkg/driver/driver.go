// Package driver runs a cluster on a fixed cadence and exposes the
// start/pause/reset/speed controls of the simulator.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"gravity-cluster/pkg/simulation"
	"gravity-cluster/pkg/trail"
)

var (
	// ErrNotPrepared is returned by controls used before Prepare.
	ErrNotPrepared = errors.New("driver: no configuration prepared")

	// ErrInvalidSpeed is returned for a speed level outside [MinSpeed, MaxSpeed].
	ErrInvalidSpeed = errors.New("driver: speed level out of range")
)

const (
	MinSpeed = 1
	MaxSpeed = 9

	// speedScale converts a speed level to a time step.
	speedScale = 10000.0
)

// Prepared is a freshly loaded, uninitialized cluster.
type Prepared struct {
	Cluster *simulation.Cluster

	// TimeStep overrides Config.TimeStep when non-zero.
	TimeStep float64
}

// Loader builds the named configuration.
type Loader func(name string) (Prepared, error)

// Config holds the cadence settings.
type Config struct {
	TimeStep       float64
	TickInterval   time.Duration
	StepsPerFrame  int
	MaxTracePoints int
	ShowPaths      bool
}

// Driver owns the current cluster. The step loop, the controls and the
// readers may run on different goroutines; every call is serialized on
// one mutex so a reader never sees a step in flight.
type Driver struct {
	load  Loader
	names []string
	cfg   Config
	log   *slog.Logger

	mu        sync.Mutex
	current   string
	cluster   *simulation.Cluster
	dt        float64
	running   bool
	showPaths bool
	sinceDraw int
	trail     *trail.Tracker

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan Snapshot
}

// New returns a driver that can switch between names using load.
func New(load Loader, names []string, cfg Config, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.StepsPerFrame < 1 {
		cfg.StepsPerFrame = 1
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Millisecond
	}
	return &Driver{
		load:      load,
		names:     names,
		cfg:       cfg,
		log:       log,
		dt:        cfg.TimeStep,
		showPaths: cfg.ShowPaths,
		trail:     trail.NewTracker(cfg.MaxTracePoints),
		subs:      make(map[int]chan Snapshot),
	}
}

// Prepare loads and initializes the named configuration. The driver is
// left paused with the paths cleared.
func (d *Driver) Prepare(name string) error {
	p, err := d.load(name)
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", name, err)
	}
	if err := p.Cluster.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize %q: %w", name, err)
	}

	d.mu.Lock()
	d.current = name
	d.cluster = p.Cluster
	d.running = false
	d.sinceDraw = 0
	if p.TimeStep > 0 {
		d.dt = p.TimeStep
	}
	d.trail.Clear()
	d.trail.Record(p.Cluster.Bodies())
	snap := d.snapshotLocked()
	d.mu.Unlock()

	d.log.Info("configuration prepared", "name", name, "bodies", p.Cluster.Len(), "dt", snap.TimeStep)
	d.publish(snap)
	return nil
}

// Reset reloads the current configuration.
func (d *Driver) Reset() error {
	d.mu.Lock()
	name := d.current
	d.mu.Unlock()
	if name == "" {
		return ErrNotPrepared
	}
	return d.Prepare(name)
}

// Next prepares the configuration after the current one, wrapping around.
func (d *Driver) Next() error { return d.cycle(1) }

// Prev prepares the configuration before the current one, wrapping around.
func (d *Driver) Prev() error { return d.cycle(-1) }

func (d *Driver) cycle(delta int) error {
	if len(d.names) == 0 {
		return ErrNotPrepared
	}
	d.mu.Lock()
	idx := 0
	for i, n := range d.names {
		if n == d.current {
			idx = i
			break
		}
	}
	d.mu.Unlock()
	idx = ((idx+delta)%len(d.names) + len(d.names)) % len(d.names)
	return d.Prepare(d.names[idx])
}

// Start resumes stepping.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cluster == nil {
		return ErrNotPrepared
	}
	if !d.running {
		d.running = true
		d.log.Debug("simulation started", "name", d.current)
	}
	return nil
}

// Pause stops stepping.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		d.running = false
		d.log.Debug("simulation paused", "name", d.current, "step", d.cluster.Steps())
	}
}

// Toggle flips between running and paused.
func (d *Driver) Toggle() error {
	if d.Running() {
		d.Pause()
		return nil
	}
	return d.Start()
}

func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// SetSpeed maps a speed level in [MinSpeed, MaxSpeed] to dt = level/10000.
func (d *Driver) SetSpeed(level int) error {
	if level < MinSpeed || level > MaxSpeed {
		return fmt.Errorf("%w: %d", ErrInvalidSpeed, level)
	}
	return d.SetTimeStep(float64(level) / speedScale)
}

// Speed returns the speed level closest to the current time step.
func (d *Driver) Speed() int {
	level := int(math.Round(d.TimeStep() * speedScale))
	return min(max(level, MinSpeed), MaxSpeed)
}

func (d *Driver) SetTimeStep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", simulation.ErrInvalidTimeStep, dt)
	}
	d.mu.Lock()
	d.dt = dt
	d.mu.Unlock()
	return nil
}

func (d *Driver) TimeStep() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dt
}

func (d *Driver) SetShowPaths(show bool) {
	d.mu.Lock()
	d.showPaths = show
	d.mu.Unlock()
}

func (d *Driver) ShowPaths() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.showPaths
}

// Current returns the prepared configuration name.
func (d *Driver) Current() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *Driver) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Tick performs one step when running. Every StepsPerFrame steps a frame
// is recorded in the paths and published to subscribers.
func (d *Driver) Tick() error {
	d.mu.Lock()
	if !d.running || d.cluster == nil {
		d.mu.Unlock()
		return nil
	}
	snap, frame, err := d.stepLocked(1)
	d.mu.Unlock()
	if err == nil && frame {
		d.publish(snap)
	}
	return err
}

// Frame performs StepsPerFrame steps when running, then records and
// publishes a frame. The ebiten loop calls it once per update.
func (d *Driver) Frame() error {
	d.mu.Lock()
	if !d.running || d.cluster == nil {
		d.mu.Unlock()
		return nil
	}
	snap, _, err := d.stepLocked(d.cfg.StepsPerFrame - d.sinceDraw)
	d.mu.Unlock()
	if err == nil {
		d.publish(snap)
	}
	return err
}

// StepOnce advances one step regardless of the running state and always
// records a frame.
func (d *Driver) StepOnce() error {
	d.mu.Lock()
	if d.cluster == nil {
		d.mu.Unlock()
		return ErrNotPrepared
	}
	if err := d.cluster.Step(d.dt); err != nil {
		d.mu.Unlock()
		return err
	}
	d.sinceDraw = 0
	d.trail.Record(d.cluster.Bodies())
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.publish(snap)
	return nil
}

// stepLocked advances n steps and reports whether a frame boundary was
// reached.
func (d *Driver) stepLocked(n int) (Snapshot, bool, error) {
	for i := 0; i < n; i++ {
		if err := d.cluster.Step(d.dt); err != nil {
			return Snapshot{}, false, err
		}
		d.sinceDraw++
	}
	if d.sinceDraw < d.cfg.StepsPerFrame {
		return Snapshot{}, false, nil
	}
	d.sinceDraw = 0
	d.trail.Record(d.cluster.Bodies())
	return d.snapshotLocked(), true, nil
}

// Run ticks every TickInterval until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(); err != nil {
				return err
			}
		}
	}
}

// Snapshot returns the current state.
func (d *Driver) Snapshot() (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cluster == nil {
		return Snapshot{}, ErrNotPrepared
	}
	return d.snapshotLocked(), nil
}

func (d *Driver) snapshotLocked() Snapshot {
	return takeSnapshot(d.current, d.cluster, d.dt, d.running)
}

// Paths returns the recorded path of every body, or nil when paths are
// hidden.
func (d *Driver) Paths() [][]trail.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.showPaths || d.cluster == nil {
		return nil
	}
	paths := make([][]trail.Point, d.cluster.Len())
	for i := range paths {
		paths[i] = d.trail.Path(i)
	}
	return paths
}

// Subscribe returns a channel receiving published snapshots and a cancel
// function. A slow reader only ever sees the latest snapshot.
func (d *Driver) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	d.subMu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = ch
	d.subMu.Unlock()

	return ch, func() {
		d.subMu.Lock()
		defer d.subMu.Unlock()
		if _, ok := d.subs[id]; ok {
			delete(d.subs, id)
			close(ch)
		}
	}
}

func (d *Driver) publish(s Snapshot) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	for _, ch := range d.subs {
		select {
		case ch <- s:
		default:
			// replace the stale snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}
