package physics

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// DefaultG is the gravitational constant at the simulator's artificial
// length/mass/time scale.
const DefaultG = 10000.0

// Field is the pairwise Newtonian force law.
//
// With Softening == 0 the law is exactly G·m1·m2/|r|² along r/|r|, and
// coincident bodies produce non-finite components. With Softening = ε > 0
// the Plummer form G·m1·m2·r/(|r|²+ε²)^(3/2) is used, which stays bounded
// and vanishes for coincident bodies.
type Field struct {
	G         float64
	Softening float64
}

// Force returns the force on a body of mass mi at pi exerted by a body of
// mass mj at pj.
func (f Field) Force(mi, mj float64, pi, pj Vector) Vector {
	r := pj.Sub(pi)
	if f.Softening == 0 {
		n := r.Norm()
		return r.Normalized().ScalarProduct(f.G * mi * mj / (n * n))
	}
	d2 := r.Norm()*r.Norm() + f.Softening*f.Softening
	return r.ScalarProduct(f.G * mi * mj / (d2 * math.Sqrt(d2)))
}

// NetAcceleration returns the acceleration of bodies[i] due to every other
// body at their current positions.
func (f Field) NetAcceleration(bodies []Body, i int) Vector {
	return f.accelerationAt(positionsOf(bodies), bodies, i)
}

// Accelerations evaluates the force law for every body with the given
// positions (one per body, same order). With workers > 1 the bodies are
// split across goroutines; the call returns only after all have finished.
func (f Field) Accelerations(positions []Vector, bodies []Body, workers int) []Vector {
	out := make([]Vector, len(bodies))
	if workers <= 1 || len(bodies) < 2 {
		for i := range bodies {
			out[i] = f.accelerationAt(positions, bodies, i)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range bodies {
		g.Go(func() error {
			out[i] = f.accelerationAt(positions, bodies, i)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (f Field) accelerationAt(positions []Vector, bodies []Body, i int) Vector {
	if len(bodies) == 1 {
		return Zero(positions[i].Dim())
	}
	forces := make([]Vector, 0, len(bodies)-1)
	mi := bodies[i].mass
	for j := range bodies {
		if j == i {
			continue
		}
		forces = append(forces, f.Force(mi, bodies[j].mass, positions[i], positions[j]))
	}
	// a = F/m
	return Sum(forces).ScalarProduct(1 / mi)
}

// PotentialEnergy returns -Σ_{i<j} G·mi·mj/|rij|, softened the same way as
// the force law.
func (f Field) PotentialEnergy(bodies []Body) float64 {
	var u float64
	eps2 := f.Softening * f.Softening
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[j].pos.Sub(bodies[i].pos).Norm()
			u -= f.G * bodies[i].mass * bodies[j].mass / math.Sqrt(r*r+eps2)
		}
	}
	return u
}

func positionsOf(bodies []Body) []Vector {
	ps := make([]Vector, len(bodies))
	for i := range bodies {
		ps[i] = bodies[i].pos
	}
	return ps
}
