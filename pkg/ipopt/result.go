package ipopt

// PerformanceResults counts the evaluations requested by the solver. Each
// counter is incremented when the callback is entered, before its arguments
// are checked or the Problem method runs, so malformed and failed
// evaluations are counted too. Sparsity queries are not evaluations.
type PerformanceResults struct {
	ObjectiveEvaluations         uint32
	ObjectiveGradientEvaluations uint32
	ConstraintEvaluations        uint32
	JacobianEvaluations          uint32
	HessianEvaluations           uint32
}

// Solution holds the final iterate reported by the solver.
type Solution struct {
	// X is the final value of the variables.
	X []float64
	// Constraints is g(X).
	Constraints []float64
	// Lambda holds the constraint multipliers.
	Lambda []float64
	// ZL and ZU hold the lower and upper bound multipliers.
	ZL []float64
	ZU []float64
	// Objective is f(X).
	Objective float64
}

// OptimizationResult is the outcome of one Optimize call. It is owned by the
// caller once returned.
type OptimizationResult struct {
	Solution    Solution
	Performance PerformanceResults
	// Status is the raw return code of the native solve.
	Status Status
	// RunID correlates the result with the log lines of the solve.
	RunID string
}
