package scenario

import "math"

// ApplyAutoOrbit returns a copy of c in which every body after the first
// that starts at rest orbits the first body on a circle, counterclockwise.
func ApplyAutoOrbit(c Configuration, g float64) Configuration {
	if len(c.Bodies) == 0 {
		return c
	}
	bodies := make([]BodyConfig, len(c.Bodies))
	copy(bodies, c.Bodies)
	c.Bodies = bodies

	central := bodies[0]
	if len(central.Position) != 2 {
		return c
	}
	for i := 1; i < len(bodies); i++ {
		b := bodies[i]
		if len(b.Position) != 2 || !atRest(b.Velocity) {
			continue
		}
		dx := b.Position[0] - central.Position[0]
		dy := b.Position[1] - central.Position[1]
		r := math.Hypot(dx, dy)
		if r == 0 {
			continue
		}
		v := math.Sqrt(g * central.Mass / r)
		// perpendicular to the radius vector
		bodies[i].Velocity = []float64{-dy / r * v, dx / r * v}
	}
	return c
}

func atRest(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
