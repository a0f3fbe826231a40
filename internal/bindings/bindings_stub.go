//go:build !cgo || !ipopt

package bindings

// Stub implementation for builds without cgo or without the ipopt build tag.
// The package still compiles, and the trampolines stay usable by in-memory
// engines, but the native engine reports ErrNotBuilt.

type nativeEngine struct{}

// Native returns an engine that always fails with ErrNotBuilt.
func Native() Engine { return nativeEngine{} }

func (nativeEngine) CreateProblem(Dims, []float64, []float64, []float64, []float64) (NativeProblem, error) {
	return nil, ErrNotBuilt
}

// Version returns an empty string when the native library is not linked.
func Version() string { return "" }
