// Package simulation owns a fixed set of bodies and advances them in time.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"gravity-cluster/pkg/logging"
	"gravity-cluster/pkg/physics"
)

// StepStats describes one completed step.
type StepStats struct {
	Step     uint64
	Time     float64
	Duration time.Duration
	Energy   float64
	Bodies   int
	Finite   bool
}

// Observer receives a StepStats after every committed step.
type Observer interface {
	ObserveStep(StepStats)
}

// Option configures a Cluster.
type Option func(*Cluster)

// WithG sets the gravitational constant.
func WithG(g float64) Option {
	return func(c *Cluster) { c.field.G = g }
}

// WithSoftening sets the softening length. Zero keeps the unsoftened law.
func WithSoftening(eps float64) Option {
	return func(c *Cluster) { c.field.Softening = eps }
}

// WithWorkers evaluates accelerations on up to n goroutines per step.
func WithWorkers(n int) Option {
	return func(c *Cluster) { c.workers = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cluster) {
		if l != nil {
			c.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Cluster) { c.observer = o }
}

// Cluster is the fixed collection of bodies plus the force law.
//
// Outside of Step, every body's cached acceleration matches the force law
// at the current positions. Step holds the write lock for its whole
// duration, so Bodies never observes a half-advanced state.
type Cluster struct {
	mu          sync.RWMutex
	bodies      []physics.Body
	field       physics.Field
	workers     int
	initialized bool
	accReady    bool
	steps       uint64
	time        float64
	warned      bool

	log      *slog.Logger
	observer Observer
}

// New validates bodies and returns an uninitialized cluster holding a
// copy of them.
func New(bodies []physics.Body, opts ...Option) (*Cluster, error) {
	c := &Cluster{
		field:   physics.Field{G: physics.DefaultG},
		workers: 1,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if !finite(c.field.G) {
		return nil, fmt.Errorf("%w: G=%v", ErrInvalidConstant, c.field.G)
	}
	if !finite(c.field.Softening) || c.field.Softening < 0 {
		return nil, fmt.Errorf("%w: softening=%v", ErrInvalidConstant, c.field.Softening)
	}
	if len(bodies) == 0 {
		return nil, ErrNoBodies
	}

	dim := bodies[0].Position().Dim()
	for i, b := range bodies {
		if !finite(b.Mass()) || b.Mass() <= 0 {
			return nil, &BodyError{Index: i, Err: fmt.Errorf("%w: got %v", ErrInvalidMass, b.Mass())}
		}
		if b.Position().Dim() == 0 || b.Position().Dim() != dim || b.Velocity().Dim() != dim {
			return nil, &BodyError{Index: i, Err: fmt.Errorf("%w: position %d, velocity %d, want %d",
				ErrDimensionMismatch, b.Position().Dim(), b.Velocity().Dim(), dim)}
		}
	}

	c.bodies = make([]physics.Body, len(bodies))
	copy(c.bodies, bodies)
	return c, nil
}

// AdjustForCenterOfMassVelocity subtracts the mass-weighted mean velocity
// from every body so the cluster does not drift.
func (c *Cluster) AdjustForCenterOfMassVelocity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adjustVelocities()
}

func (c *Cluster) adjustVelocities() {
	vcom := physics.CenterOfMassVelocity(c.bodies)
	for i := range c.bodies {
		c.bodies[i].SetVelocity(c.bodies[i].Velocity().Sub(vcom))
	}
}

// ComputeInitialAccelerations caches the force law for every body.
// Step refuses to run until this (or Initialize) has been called.
func (c *Cluster) ComputeInitialAccelerations() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.computeAccelerations()
}

func (c *Cluster) computeAccelerations() {
	positions := make([]physics.Vector, len(c.bodies))
	for i := range c.bodies {
		positions[i] = c.bodies[i].Position()
	}
	accs := c.field.Accelerations(positions, c.bodies, c.workers)
	for i := range c.bodies {
		c.bodies[i].SetAcceleration(accs[i])
	}
	c.accReady = true
}

// Initialize zeroes the net momentum and computes the initial
// accelerations. It must be called exactly once, before the first Step.
func (c *Cluster) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return ErrAlreadyInitialized
	}
	c.adjustVelocities()
	c.computeAccelerations()
	c.initialized = true

	c.log.Debug("cluster initialized",
		"bodies", len(c.bodies),
		"g", c.field.G,
		"softening", c.field.Softening)
	return nil
}

// Step advances every body by dt using velocity Verlet.
// The new state is committed as a whole; non-finite values are committed
// too, so a degenerate configuration stays visible.
func (c *Cluster) Step(dt float64) error {
	if !finite(dt) || dt <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTimeStep, dt)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.accReady {
		return ErrNotInitialized
	}

	start := time.Now()
	c.bodies = physics.VelocityVerlet(c.bodies, dt, c.field, c.workers)
	c.steps++
	c.time += dt
	elapsed := time.Since(start)

	ok := allFinite(c.bodies)
	if !ok && !c.warned {
		c.warned = true
		c.log.Warn("non-finite body state", "step", c.steps, "time", c.time)
	}

	if c.log.Enabled(context.Background(), logging.LevelTrace) {
		c.log.Log(context.Background(), logging.LevelTrace, "step",
			"step", c.steps,
			"time", c.time,
			"elapsed", elapsed)
	}

	if c.observer != nil {
		c.observer.ObserveStep(StepStats{
			Step:     c.steps,
			Time:     c.time,
			Duration: elapsed,
			Energy:   c.energy(),
			Bodies:   len(c.bodies),
			Finite:   ok,
		})
	}
	return nil
}

// Bodies returns a copy of the current bodies.
func (c *Cluster) Bodies() []physics.Body {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]physics.Body, len(c.bodies))
	copy(out, c.bodies)
	return out
}

func (c *Cluster) Len() int { return len(c.bodies) }

func (c *Cluster) G() float64 { return c.field.G }

func (c *Cluster) Softening() float64 { return c.field.Softening }

func (c *Cluster) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Steps returns the number of completed steps.
func (c *Cluster) Steps() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.steps
}

// Time returns the simulated time elapsed.
func (c *Cluster) Time() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.time
}

// Energy returns the total kinetic plus potential energy.
func (c *Cluster) Energy() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.energy()
}

func (c *Cluster) energy() float64 {
	return physics.KineticEnergy(c.bodies) + c.field.PotentialEnergy(c.bodies)
}

// Momentum returns the total momentum.
func (c *Cluster) Momentum() physics.Vector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return physics.Momentum(c.bodies)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func allFinite(bodies []physics.Body) bool {
	for _, b := range bodies {
		if !b.Position().IsFinite() || !b.Velocity().IsFinite() || !b.Acceleration().IsFinite() {
			return false
		}
	}
	return true
}
