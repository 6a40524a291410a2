package physics

import "image/color"

// Body is one point mass. Diameter, color and name are display attributes
// and are never read by the force law or the integrator.
type Body struct {
	name     string
	diameter float64
	mass     float64
	pos      Vector
	vel      Vector
	acc      Vector
	clr      color.RGBA
}

// NewBody returns a body with no cached acceleration.
func NewBody(diameter, mass float64, pos, vel Vector, clr color.RGBA) Body {
	return Body{
		diameter: diameter,
		mass:     mass,
		pos:      pos,
		vel:      vel,
		clr:      clr,
	}
}

// WithName returns a copy of b carrying a display name.
func (b Body) WithName(name string) Body {
	b.name = name
	return b
}

func (b Body) Name() string      { return b.name }
func (b Body) Diameter() float64 { return b.diameter }
func (b Body) Mass() float64     { return b.mass }
func (b Body) Color() color.RGBA { return b.clr }

func (b Body) Position() Vector     { return b.pos }
func (b Body) Velocity() Vector     { return b.vel }
func (b Body) Acceleration() Vector { return b.acc }

func (b *Body) SetPosition(v Vector)     { b.pos = v }
func (b *Body) SetVelocity(v Vector)     { b.vel = v }
func (b *Body) SetAcceleration(v Vector) { b.acc = v }

// HasAcceleration reports whether an acceleration has been cached.
func (b Body) HasAcceleration() bool { return b.acc.Dim() > 0 }

// Momentum returns m·v.
func (b Body) Momentum() Vector { return b.vel.ScalarProduct(b.mass) }
