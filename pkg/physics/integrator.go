package physics

// VelocityVerlet advances bodies by dt and returns the new state.
// The input slice is left untouched so the caller can commit the result
// in one assignment.
//
// Every body must carry the acceleration for its current position.
// All positions are moved before any new acceleration is evaluated:
//
//	s(t+dt) = s(t) + dt·v(t) + ½·dt²·a(t)
//	a(t+dt) = f(s(t+dt))
//	v(t+dt) = v(t) + ½·dt·[a(t) + a(t+dt)]
func VelocityVerlet(bodies []Body, dt float64, f Field, workers int) []Body {
	next := make([]Body, len(bodies))
	copy(next, bodies)

	positions := make([]Vector, len(bodies))
	for i, b := range bodies {
		positions[i] = Add(b.pos, b.vel.ScalarProduct(dt), b.acc.ScalarProduct(dt*dt/2))
	}

	accs := f.Accelerations(positions, bodies, workers)

	for i, b := range bodies {
		next[i].pos = positions[i]
		next[i].acc = accs[i]
		next[i].vel = Add(b.vel, Add(b.acc, accs[i]).ScalarProduct(dt/2))
	}
	return next
}

// CenterOfMassVelocity returns (Σ mᵢ·vᵢ) / (Σ mᵢ). Zero total mass gives
// non-finite components.
func CenterOfMassVelocity(bodies []Body) Vector {
	return Momentum(bodies).ScalarProduct(1 / TotalMass(bodies))
}

// CenterOfMass returns (Σ mᵢ·sᵢ) / (Σ mᵢ).
func CenterOfMass(bodies []Body) Vector {
	weighted := make([]Vector, len(bodies))
	for i, b := range bodies {
		weighted[i] = b.pos.ScalarProduct(b.mass)
	}
	return Sum(weighted).ScalarProduct(1 / TotalMass(bodies))
}

// Momentum returns Σ mᵢ·vᵢ.
func Momentum(bodies []Body) Vector {
	ps := make([]Vector, len(bodies))
	for i, b := range bodies {
		ps[i] = b.Momentum()
	}
	return Sum(ps)
}

func TotalMass(bodies []Body) float64 {
	var m float64
	for _, b := range bodies {
		m += b.mass
	}
	return m
}

// KineticEnergy returns Σ ½·mᵢ·|vᵢ|².
func KineticEnergy(bodies []Body) float64 {
	var k float64
	for _, b := range bodies {
		v := b.vel.Norm()
		k += 0.5 * b.mass * v * v
	}
	return k
}
