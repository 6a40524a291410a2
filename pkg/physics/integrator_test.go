package physics

import (
	"fmt"
	"image/color"
	"math"
	"testing"
)

var white = color.RGBA{255, 255, 255, 255}

func body(mass, x, y, vx, vy float64) Body {
	return NewBody(10, mass, NewVector(x, y), NewVector(vx, vy), white)
}

func withAccelerations(f Field, bodies []Body) []Body {
	for i := range bodies {
		bodies[i].SetAcceleration(f.NetAcceleration(bodies, i))
	}
	return bodies
}

func TestTwoBodySymmetry(t *testing.T) {
	const (
		m = 10.0
		d = 50.0
	)
	f := Field{G: DefaultG}
	bodies := withAccelerations(f, []Body{body(m, -d, 0, 0, 0), body(m, d, 0, 0, 0)})

	want := f.G * m / (4 * d * d)
	a0, a1 := bodies[0].Acceleration(), bodies[1].Acceleration()
	if !approx(a0.X(), want, 1e-12) || a0.Y() != 0 {
		t.Errorf("expected body 0 acceleration [%v, 0], got %v", want, a0)
	}
	if !a1.Equal(a0.Negative()) {
		t.Errorf("expected equal and opposite accelerations, got %v and %v", a0, a1)
	}

	next := VelocityVerlet(bodies, 0.0005, f, 1)
	p0, p1 := next[0].Position(), next[1].Position()
	if p0.X() != -p1.X() || p0.Y() != p1.Y() {
		t.Errorf("expected positions symmetric about origin, got %v and %v", p0, p1)
	}
	if p0.X() <= -d {
		t.Errorf("expected body 0 to move toward the origin, got %v", p0)
	}
}

func TestThreeBodyConfiguration(t *testing.T) {
	f := Field{G: 10000}
	bodies := withAccelerations(f, []Body{
		body(1000, 0, 0, 0, 0),
		body(10, 100, 0, 0, 0),
		body(10, -100, 0, 0, 0),
	})

	if a := bodies[0].Acceleration(); !a.Equal(NewVector(0, 0)) {
		t.Errorf("expected zero acceleration for central body, got %v", a)
	}
	a1, a2 := bodies[1].Acceleration(), bodies[2].Acceleration()
	if a1.X() >= 0 || a2.X() <= 0 {
		t.Errorf("expected outer bodies to accelerate toward origin, got %v and %v", a1, a2)
	}
	if a1.Norm() != a2.Norm() || a1.Norm() == 0 {
		t.Errorf("expected equal nonzero magnitudes, got %v and %v", a1.Norm(), a2.Norm())
	}
	// G·1000/100² + G·10/200²
	want := 10000*1000/1e4 + 10000*10/4e4
	if !approx(a1.Norm(), want, 1e-9) {
		t.Errorf("expected magnitude %v, got %v", want, a1.Norm())
	}
}

func TestCoincidentBodiesAreNonFinite(t *testing.T) {
	f := Field{G: DefaultG}
	bodies := []Body{body(5, 1, 1, 0, 0), body(5, 1, 1, 0, 0)}
	if a := f.NetAcceleration(bodies, 0); a.IsFinite() {
		t.Errorf("expected non-finite acceleration, got %v", a)
	}
}

func TestSofteningBoundsAcceleration(t *testing.T) {
	f := Field{G: DefaultG, Softening: 5}
	coincident := []Body{body(5, 1, 1, 0, 0), body(5, 1, 1, 0, 0)}
	if a := f.NetAcceleration(coincident, 0); !a.IsFinite() || a.Norm() != 0 {
		t.Errorf("expected zero acceleration for coincident softened bodies, got %v", a)
	}

	// Plummer peak is G·m·2/(3√3·ε²) at r = ε/√2.
	bound := f.G * 5 * 2 / (3 * math.Sqrt(3) * 25)
	for _, r := range []float64{1e-9, 0.1, 1, 3.5355, 10} {
		near := []Body{body(5, 0, 0, 0, 0), body(5, r, 0, 0, 0)}
		a := f.NetAcceleration(near, 0)
		if !a.IsFinite() || a.Norm() > bound*(1+1e-9) {
			t.Errorf("r=%v: expected |a| <= %v, got %v", r, bound, a.Norm())
		}
	}
}

func TestSingleBodyHasZeroAcceleration(t *testing.T) {
	f := Field{G: DefaultG}
	a := f.NetAcceleration([]Body{body(1, 3, 4, 0, 0)}, 0)
	if !a.Equal(NewVector(0, 0)) {
		t.Errorf("expected zero acceleration, got %v", a)
	}
}

func TestVelocityVerletLeavesInputUntouched(t *testing.T) {
	f := Field{G: DefaultG}
	bodies := withAccelerations(f, []Body{body(100, -10, 0, 0, 1), body(100, 10, 0, 0, -1)})
	before := bodies[0].Position()
	_ = VelocityVerlet(bodies, 0.001, f, 1)
	if !bodies[0].Position().Equal(before) {
		t.Errorf("expected input position %v, got %v", before, bodies[0].Position())
	}
}

func TestVelocityVerletFreeBody(t *testing.T) {
	f := Field{G: DefaultG}
	bodies := withAccelerations(f, []Body{body(1, 0, 0, 2, -1)})
	next := VelocityVerlet(bodies, 0.5, f, 1)
	if !next[0].Position().Equal(NewVector(1, -0.5)) {
		t.Errorf("expected [1, -0.5], got %v", next[0].Position())
	}
	if !next[0].Velocity().Equal(NewVector(2, -1)) {
		t.Errorf("expected velocity unchanged, got %v", next[0].Velocity())
	}
}

// circularBinary returns two equal masses on a circular orbit of radius r
// about the origin.
func circularBinary(g, m, r float64) []Body {
	v := math.Sqrt(g * m / (4 * r))
	return []Body{body(m, r, 0, 0, v), body(m, -r, 0, 0, -v)}
}

func TestCircularOrbitStaysBounded(t *testing.T) {
	const (
		r  = 100.0
		dt = 0.0005
	)
	f := Field{G: DefaultG}
	bodies := withAccelerations(f, circularBinary(f.G, 1000, r))
	e0 := KineticEnergy(bodies) + f.PotentialEnergy(bodies)

	for step := 0; step < 20000; step++ {
		bodies = VelocityVerlet(bodies, dt, f, 1)
		sep := bodies[1].Position().Sub(bodies[0].Position()).Norm()
		if math.Abs(sep-2*r)/(2*r) > 0.05 {
			t.Fatalf("step %d: separation %v left the ±5%% band around %v", step, sep, 2*r)
		}
	}

	e1 := KineticEnergy(bodies) + f.PotentialEnergy(bodies)
	if math.Abs((e1-e0)/e0) > 1e-3 {
		t.Errorf("expected energy drift below 0.1%%, got %v -> %v", e0, e1)
	}
}

func TestMomentumConserved(t *testing.T) {
	f := Field{G: DefaultG}
	bodies := withAccelerations(f, []Body{
		body(1000, 0, 0, 1, 0),
		body(10, 120, 0, 0, 288),
		body(40, 0, -200, 220, 0),
	})
	p0 := Momentum(bodies)
	for i := 0; i < 2000; i++ {
		bodies = VelocityVerlet(bodies, 0.0005, f, 1)
	}
	p1 := Momentum(bodies)
	if p1.Sub(p0).Norm() > 1e-6*math.Max(1, p0.Norm()) {
		t.Errorf("expected momentum %v, got %v", p0, p1)
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	f := Field{G: DefaultG, Softening: 1}
	bodies := make([]Body, 12)
	for i := range bodies {
		a := float64(i) * 2 * math.Pi / float64(len(bodies))
		bodies[i] = body(float64(10+i), 150*math.Cos(a), 90*math.Sin(a), -math.Sin(a), math.Cos(a))
	}
	bodies = withAccelerations(f, bodies)

	serial, parallel := bodies, bodies
	for i := 0; i < 50; i++ {
		serial = VelocityVerlet(serial, 0.0005, f, 1)
		parallel = VelocityVerlet(parallel, 0.0005, f, 4)
	}
	for i := range serial {
		if !serial[i].Position().Equal(parallel[i].Position()) || !serial[i].Velocity().Equal(parallel[i].Velocity()) {
			t.Errorf("body %d: serial %v/%v, parallel %v/%v", i,
				serial[i].Position(), serial[i].Velocity(), parallel[i].Position(), parallel[i].Velocity())
		}
	}
}

func TestCenterOfMassVelocity(t *testing.T) {
	bodies := []Body{body(1, 0, 0, 3, 0), body(3, 0, 0, -1, 4)}
	got := CenterOfMassVelocity(bodies)
	if !got.Equal(NewVector(0, 3)) {
		t.Errorf("expected [0, 3], got %v", got)
	}
	com := CenterOfMass([]Body{body(1, 0, 0, 0, 0), body(3, 4, 8, 0, 0)})
	if !com.Equal(NewVector(3, 6)) {
		t.Errorf("expected [3, 6], got %v", com)
	}
}

func BenchmarkAccelerations(b *testing.B) {
	f := Field{G: DefaultG}
	for _, n := range []int{3, 10, 50} {
		for _, workers := range []int{1, 4} {
			b.Run(fmt.Sprintf("Bodies-%d/Workers-%d", n, workers), func(b *testing.B) {
				bodies := make([]Body, n)
				for i := range bodies {
					a := float64(i) * 2 * math.Pi / float64(n)
					bodies[i] = body(10, 100*math.Cos(a), 100*math.Sin(a), 0, 0)
				}
				positions := positionsOf(bodies)
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					f.Accelerations(positions, bodies, workers)
				}
			})
		}
	}
}
