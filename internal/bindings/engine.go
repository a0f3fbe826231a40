package bindings

// Engine creates native problem handles. Native returns the cgo-backed Ipopt
// engine; tests substitute an in-memory engine that drives the same
// trampolines.
type Engine interface {
	// CreateProblem builds a problem handle from the declared sizes and the
	// variable and constraint bounds. The bounds are copied by the engine.
	CreateProblem(d Dims, xL, xU, gL, gU []float64) (NativeProblem, error)
}

// NativeProblem is one live problem handle. Free must be called exactly once
// on every path after a successful CreateProblem.
type NativeProblem interface {
	AddIntOption(name string, value int32) error
	AddNumOption(name string, value float64) error
	AddStrOption(name, value string) error
	SetScaling(objScaling float64, xScaling, gScaling []float64) error
	OpenOutputFile(path string, printLevel int32) error

	// Solve runs the optimizer once. x holds the starting point on entry and
	// the final point on return; g, obj, multG, multXL and multXU receive the
	// final constraint values, objective and multipliers. The engine invokes
	// the trampolines with ud as the user-data token for the whole call.
	Solve(x, g []float64, obj *float64, multG, multXL, multXU []float64, ud UserData) int32

	Free()
}

// Evaluator is the safe side of the callback protocol. The trampolines hand
// it bounds-checked slices; it never sees raw pointers.
type Evaluator interface {
	Objective(x []float64, newX bool) (float64, bool)
	Gradient(x []float64, newX bool, grad []float64) bool
	Constraints(x []float64, newX bool, g []float64) bool
	Jacobian(req Request) bool
	Hessian(req Request) bool
}

// Callback names one of the five evaluation callbacks.
type Callback int

const (
	CallObjective Callback = iota
	CallGradient
	CallConstraints
	CallJacobian
	CallHessian
)

// InvocationCounter is implemented by evaluators that count value requests.
// The trampolines call Invoked as soon as the token resolves, before any
// length check, so malformed calls are counted too. Sparsity queries are not
// reported.
type InvocationCounter interface {
	Invoked(c Callback)
}

// Request is either a SparsityQuery or a ValueEvaluation. The native protocol
// encodes the difference as a null x pointer.
type Request interface {
	isRequest()
}

// SparsityQuery asks for the coordinates of the structural non-zeros.
type SparsityQuery struct {
	N, M int32
	Rows []int32
	Cols []int32
}

// ValueEvaluation asks for the non-zero values at X, in the order the
// sparsity query declared them. ObjFactor, Lambda and NewLambda are only set
// for Hessian requests.
type ValueEvaluation struct {
	X         []float64
	NewX      bool
	M         int32
	ObjFactor float64
	Lambda    []float64
	NewLambda bool
	Values    []float64
}

func (SparsityQuery) isRequest()   {}
func (ValueEvaluation) isRequest() {}
