package bindings

import "errors"

// Dims records the sizes a native problem was created with. Every length the
// engine passes back into a callback is checked against these values before
// any pointer is turned into a slice.
type Dims struct {
	N          int32
	M          int32
	NNZJac     int32
	NNZHessian int32
}

// UserData is the opaque token handed to the native solver as its user-data
// pointer. It is a registry key, never a Go pointer.
type UserData uintptr

// IndexStyle is the index base used for every sparsity coordinate. The
// bindings always use C-style (zero-based) indexing.
const IndexStyle = 0

var (
	// ErrNotBuilt reports that the native Ipopt bindings were not linked into
	// the current binary. Build with -tags ipopt and cgo enabled to link them.
	ErrNotBuilt = errors.New("ipopt/internal/bindings: native bindings not built")

	// ErrCreateProblem is returned when CreateIpoptProblem yields NULL.
	ErrCreateProblem = errors.New("ipopt/internal/bindings: CreateIpoptProblem failed")

	// ErrOptionRejected is returned when the native handle refuses an option.
	ErrOptionRejected = errors.New("ipopt/internal/bindings: option rejected")

	// ErrProblemFreed is returned by operations on a released handle.
	ErrProblemFreed = errors.New("ipopt/internal/bindings: problem already freed")
)
