package simulation

import (
	"errors"
	"fmt"

	"gravity-cluster/pkg/physics"
)

var (
	// ErrNoBodies indicates a cluster constructed without bodies.
	ErrNoBodies = errors.New("simulation: cluster has no bodies")

	// ErrInvalidMass indicates a mass that is not finite and positive.
	ErrInvalidMass = errors.New("simulation: mass must be finite and positive")

	// ErrDimensionMismatch indicates position/velocity vectors of
	// inconsistent dimension.
	ErrDimensionMismatch = physics.ErrDimensionMismatch

	// ErrInvalidTimeStep indicates a dt that is not finite and positive.
	ErrInvalidTimeStep = errors.New("simulation: time step must be finite and positive")

	// ErrInvalidConstant indicates a G or softening that is not finite, or a
	// negative softening.
	ErrInvalidConstant = errors.New("simulation: invalid physical constant")

	// ErrNotInitialized indicates Step was called before Initialize.
	ErrNotInitialized = errors.New("simulation: cluster not initialized")

	// ErrAlreadyInitialized indicates a second Initialize call.
	ErrAlreadyInitialized = errors.New("simulation: cluster already initialized")
)

// BodyError ties a validation failure to the offending body.
type BodyError struct {
	Index int
	Err   error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d: %v", e.Index, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}
