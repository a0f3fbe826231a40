package ipopt

// ProblemSize declares the dimensions of a nonlinear program.
type ProblemSize struct {
	// N is the number of variables.
	N int
	// M is the number of constraints.
	M int
	// NNZJacobian is the number of structural non-zeros in the constraint
	// Jacobian. At most N*M.
	NNZJacobian int
	// NNZHessian is the number of structural non-zeros in the lower triangle
	// of the Hessian of the Lagrangian. At most N*(N+1)/2.
	NNZHessian int
}

// InitialSolution is the starting point handed to the solver. Only X is
// required. Nil multiplier slices default to all ones.
type InitialSolution struct {
	X      []float64
	ZL     []float64
	ZU     []float64
	Lambda []float64
}

// Problem describes a nonlinear program in triplet (sparse coordinate) form
// with dense vectors.
//
// Size, Bounds and StartingPoint are each called exactly once per Optimize,
// before the native problem is created. The remaining methods are called by
// the solver, possibly many times, from within the blocking solve. Returning
// a non-nil error from an evaluation reports failure to the solver, which
// usually abandons the current step; the error itself is only logged.
//
// Implementations may cache per-x work, but must return the same values for
// identical x within one solve. A Problem must not be optimized concurrently
// with itself.
type Problem interface {
	// Size reports the problem dimensions.
	Size() ProblemSize

	// Bounds fills the variable bounds (len N) and the constraint bounds
	// (len M). Equality constraints use gL[i] == gU[i]. Values at or beyond
	// ±1e19 are treated as infinite by the solver.
	Bounds(xL, xU, gL, gU []float64)

	// StartingPoint returns the initial point. X must have length N.
	StartingPoint() InitialSolution

	// Objective evaluates f(x).
	Objective(x []float64) (float64, error)

	// ObjectiveGradient fills grad (len N) with ∇f(x).
	ObjectiveGradient(x, grad []float64) error

	// Constraints fills g (len M) with g(x).
	Constraints(x, g []float64) error

	// JacobianSparsity fills the zero-based row/column coordinates of the
	// NNZJacobian structural non-zeros. Called once, before any values.
	JacobianSparsity(n, m int, rows, cols []int32) error

	// JacobianValues fills the NNZJacobian values at x in the order declared
	// by JacobianSparsity.
	JacobianValues(x []float64, m int, values []float64) error

	// HessianSparsity fills the coordinates of the NNZHessian lower-triangle
	// non-zeros (row >= col). Called once, before any values.
	HessianSparsity(n, m int, rows, cols []int32) error

	// HessianValues fills
	//
	//	objFactor*∇²f(x) + Σ lambda[i]*∇²g_i(x)
	//
	// in the order declared by HessianSparsity, lower triangle only.
	HessianValues(x []float64, objFactor float64, lambda []float64, m int, values []float64) error
}

// Scaler is implemented by problems that supply their own scaling factors.
// Scaling is only consulted when the string option nlp_scaling_method is
// "user-scaling", compared without regard to case. A negative objective scaling turns minimization into
// maximization.
type Scaler interface {
	Scaling(objScaling *float64, xScaling, gScaling []float64)
}

// DefaultScaling applies no scaling: every factor is 1.
func DefaultScaling(objScaling *float64, xScaling, gScaling []float64) {
	*objScaling = 1
	fill(xScaling, 1)
	fill(gScaling, 1)
}

func fill(s []float64, v float64) {
	for i := range s {
		s[i] = v
	}
}

func ones(n int) []float64 {
	s := make([]float64, n)
	fill(s, 1)
	return s
}
