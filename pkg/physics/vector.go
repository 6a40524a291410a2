package physics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrDimensionMismatch is the panic value (wrapped) for arithmetic on
	// vectors of different dimension.
	ErrDimensionMismatch = errors.New("physics: vector dimension mismatch")

	// ErrEmptySum is the panic value (wrapped) for summing no vectors.
	ErrEmptySum = errors.New("physics: sum of zero vectors")

	// ErrEmptyVector is the panic value (wrapped) for constructing a vector
	// without components.
	ErrEmptyVector = errors.New("physics: vector needs at least one component")
)

// Vector is an element of R^n with n fixed at construction.
// Every operation returns a new Vector; component storage is never shared.
// The zero Vector has dimension 0 and stands for "not yet computed".
type Vector struct {
	c []float64
}

// NewVector builds a vector from its components. It panics when called
// without components.
func NewVector(components ...float64) Vector {
	if len(components) == 0 {
		panic(ErrEmptyVector)
	}
	c := make([]float64, len(components))
	copy(c, components)
	return Vector{c: c}
}

// Zero returns the zero vector of dimension n.
func Zero(n int) Vector {
	if n < 1 {
		panic(fmt.Errorf("%w: dimension %d", ErrEmptyVector, n))
	}
	return Vector{c: make([]float64, n)}
}

// Dim returns the number of components.
func (v Vector) Dim() int { return len(v.c) }

// At returns component i.
func (v Vector) At(i int) float64 { return v.c[i] }

// X returns the first component.
func (v Vector) X() float64 { return v.c[0] }

// Y returns the second component.
func (v Vector) Y() float64 { return v.c[1] }

// Components returns a copy of the components.
func (v Vector) Components() []float64 {
	c := make([]float64, len(v.c))
	copy(c, v.c)
	return c
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sq float64
	for _, x := range v.c {
		sq += x * x
	}
	return math.Sqrt(sq)
}

// Normalized returns v scaled to unit length. The zero vector has no
// direction and yields NaN components.
func (v Vector) Normalized() Vector {
	return v.ScalarProduct(1 / v.Norm())
}

// ScalarProduct multiplies every component by k.
func (v Vector) ScalarProduct(k float64) Vector {
	c := make([]float64, len(v.c))
	for i, x := range v.c {
		c[i] = x * k
	}
	return Vector{c: c}
}

// Negative returns -v.
func (v Vector) Negative() Vector { return v.ScalarProduct(-1) }

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector { return Add(v, o.Negative()) }

// Add returns the component-wise sum of vs. It panics if vs is empty or
// the operands disagree on dimension.
func Add(vs ...Vector) Vector { return Sum(vs) }

// Sum is Add over a slice.
func Sum(vs []Vector) Vector {
	if len(vs) == 0 {
		panic(ErrEmptySum)
	}
	n := vs[0].Dim()
	c := make([]float64, n)
	for j, v := range vs {
		if v.Dim() != n {
			panic(fmt.Errorf("%w: operand %d has dimension %d, want %d", ErrDimensionMismatch, j, v.Dim(), n))
		}
		for i, x := range v.c {
			c[i] += x
		}
	}
	return Vector{c: c}
}

// Equal reports whether v and o have the same dimension and components.
func (v Vector) Equal(o Vector) bool {
	if len(v.c) != len(o.c) {
		return false
	}
	for i := range v.c {
		if v.c[i] != o.c[i] {
			return false
		}
	}
	return true
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector) IsFinite() bool {
	for _, x := range v.c {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// String formats v as "[x_1, x_2, ..., x_n]".
func (v Vector) String() string {
	parts := make([]string, len(v.c))
	for i, x := range v.c {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
