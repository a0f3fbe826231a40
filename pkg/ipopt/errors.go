package ipopt

import (
	"errors"
	"fmt"

	"github.com/hsiuhsiu/ipopt-go/internal/bindings"
)

var (
	// ErrDimensionOverflow indicates a declared size that cannot be
	// represented in the solver's 32-bit index type.
	ErrDimensionOverflow = errors.New("ipopt: dimension overflows native index")

	// ErrInvalidDimension indicates a negative size, or a non-zero count
	// larger than the dense matrix it describes.
	ErrInvalidDimension = errors.New("ipopt: invalid problem dimension")

	// ErrInvalidStartingPoint indicates a starting point whose vectors do not
	// match the declared sizes.
	ErrInvalidStartingPoint = errors.New("ipopt: invalid starting point")

	// ErrInvalidOptionString indicates an option name or value containing a
	// NUL byte, which cannot cross the C string boundary.
	ErrInvalidOptionString = errors.New("ipopt: option string contains NUL byte")

	// ErrOptionRejected indicates the native solver refused an option.
	ErrOptionRejected = errors.New("ipopt: option rejected by solver")

	// ErrCallbackPanic indicates a Problem method panicked during the solve.
	// The result returned alongside it is still populated.
	ErrCallbackPanic = errors.New("ipopt: problem callback panicked")

	// ErrNotBuilt reports that the native bindings are not linked into the
	// binary. Build with cgo and -tags ipopt.
	ErrNotBuilt = errors.New("ipopt: native bindings not built")

	// ErrCreateProblem indicates the native solver could not create a
	// problem handle.
	ErrCreateProblem = errors.New("ipopt: failed to create native problem")

	// ErrNilProblem is returned when Optimize is called without a problem.
	ErrNilProblem = errors.New("ipopt: problem must not be nil")
)

// Error wraps an underlying error with the operation that failed.
type Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ipopt.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RemapError converts bindings layer errors to public API errors, keeping the
// original message.
func RemapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bindings.ErrNotBuilt):
		return ErrNotBuilt
	case errors.Is(err, bindings.ErrCreateProblem):
		return fmt.Errorf("%w: %v", ErrCreateProblem, err)
	case errors.Is(err, bindings.ErrOptionRejected):
		return fmt.Errorf("%w: %v", ErrOptionRejected, err)
	}
	return err
}
