package physics

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("expected panic wrapping %v, got %v", want, r)
		}
	}()
	fn()
}

func TestNewVectorCopiesComponents(t *testing.T) {
	src := []float64{1, 2}
	v := NewVector(src...)
	src[0] = 99
	if v.X() != 1 {
		t.Errorf("expected X 1 after mutating source, got %v", v.X())
	}

	c := v.Components()
	c[1] = 99
	if v.Y() != 2 {
		t.Errorf("expected Y 2 after mutating Components(), got %v", v.Y())
	}
	if v.Dim() != 2 {
		t.Errorf("expected dimension 2, got %d", v.Dim())
	}
}

func TestNewVectorEmptyPanics(t *testing.T) {
	expectPanic(t, ErrEmptyVector, func() { NewVector() })
}

func TestNorm(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		want float64
	}{
		{"zero", NewVector(0, 0), 0},
		{"3-4-5", NewVector(3, 4), 5},
		{"negative", NewVector(-3, -4), 5},
		{"1d", NewVector(-7), 7},
		{"3d", NewVector(2, 3, 6), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Norm(); got != tt.want {
				t.Errorf("expected norm %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAddCommutes(t *testing.T) {
	pairs := [][2]Vector{
		{NewVector(1, 2), NewVector(3, 4)},
		{NewVector(-0.5, 1e6), NewVector(1e-9, -3)},
		{NewVector(0.1, 0.2, 0.3), NewVector(0.3, 0.2, 0.1)},
	}
	for _, p := range pairs {
		if !Add(p[0], p[1]).Equal(Add(p[1], p[0])) {
			t.Errorf("expected %v + %v to commute", p[0], p[1])
		}
	}
}

func TestScalarProductIdentityAndHomogeneity(t *testing.T) {
	u := NewVector(3, -4)
	if !u.ScalarProduct(1).Equal(u) {
		t.Errorf("expected u*1 == u, got %v", u.ScalarProduct(1))
	}
	for _, k := range []float64{-2.5, -1, 0, 0.5, 3, 1e3} {
		got := u.ScalarProduct(k).Norm()
		want := math.Abs(k) * u.Norm()
		if !approx(got, want, 1e-12*math.Max(1, want)) {
			t.Errorf("k=%v: expected norm %v, got %v", k, want, got)
		}
	}
}

func TestNegativeAndSub(t *testing.T) {
	v := NewVector(1, -2)
	if !v.Negative().Equal(NewVector(-1, 2)) {
		t.Errorf("expected [-1, 2], got %v", v.Negative())
	}
	d := NewVector(5, 5).Sub(NewVector(2, 7))
	if !d.Equal(NewVector(3, -2)) {
		t.Errorf("expected [3, -2], got %v", d)
	}
}

func TestNormalized(t *testing.T) {
	n := NewVector(0, -10).Normalized()
	if !n.Equal(NewVector(0, -1)) {
		t.Errorf("expected [0, -1], got %v", n)
	}
	if z := NewVector(0, 0).Normalized(); z.IsFinite() {
		t.Errorf("expected non-finite direction for zero vector, got %v", z)
	}
}

func TestAddVariadicAndSum(t *testing.T) {
	got := Add(NewVector(1, 1), NewVector(2, 2), NewVector(3, 3))
	if !got.Equal(NewVector(6, 6)) {
		t.Errorf("expected [6, 6], got %v", got)
	}
	single := Sum([]Vector{NewVector(4, 2)})
	if !single.Equal(NewVector(4, 2)) {
		t.Errorf("expected [4, 2], got %v", single)
	}
}

func TestAddPreconditions(t *testing.T) {
	expectPanic(t, ErrEmptySum, func() { Add() })
	expectPanic(t, ErrEmptySum, func() { Sum(nil) })
	expectPanic(t, ErrDimensionMismatch, func() { Add(NewVector(1, 2), NewVector(1, 2, 3)) })
}

func TestOperationsDoNotAlias(t *testing.T) {
	v := NewVector(1, 2)
	w := v.ScalarProduct(1)
	w.c[0] = 42
	if v.X() != 1 {
		t.Errorf("expected receiver untouched, got %v", v)
	}
}

func TestString(t *testing.T) {
	if s := NewVector(1, -2.5).String(); s != "[1, -2.5]" {
		t.Errorf("expected \"[1, -2.5]\", got %q", s)
	}
}

func TestZero(t *testing.T) {
	z := Zero(3)
	if z.Dim() != 3 || z.Norm() != 0 {
		t.Errorf("expected 3-d zero vector, got %v", z)
	}
	expectPanic(t, ErrEmptyVector, func() { Zero(0) })
}
