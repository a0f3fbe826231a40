package ipopt

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/hsiuhsiu/ipopt-go/internal/bindings"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/logging"
)

// callbackState pairs the problem being solved with the result it
// accumulates. It is registered with the bindings for exactly one Optimize
// call and never outlives it.
type callbackState struct {
	problem Problem
	result  *OptimizationResult
	size    ProblemSize
	logger  logging.Logger

	// panicErr holds the first panic raised by the problem.
	panicErr error
}

var (
	_ bindings.Evaluator         = (*callbackState)(nil)
	_ bindings.InvocationCounter = (*callbackState)(nil)
)

// Invoked counts one value request. It runs before the request is validated.
func (s *callbackState) Invoked(c bindings.Callback) {
	perf := &s.result.Performance
	switch c {
	case bindings.CallObjective:
		perf.ObjectiveEvaluations++
	case bindings.CallGradient:
		perf.ObjectiveGradientEvaluations++
	case bindings.CallConstraints:
		perf.ConstraintEvaluations++
	case bindings.CallJacobian:
		perf.JacobianEvaluations++
	case bindings.CallHessian:
		perf.HessianEvaluations++
	}
}

func (s *callbackState) Objective(x []float64, _ bool) (obj float64, ok bool) {
	defer s.recover("objective", &ok)
	v, err := s.problem.Objective(x)
	if err != nil {
		s.failed("objective", err)
		return 0, false
	}
	return v, true
}

func (s *callbackState) Gradient(x []float64, _ bool, grad []float64) (ok bool) {
	defer s.recover("objective_gradient", &ok)
	return s.check("objective_gradient", s.problem.ObjectiveGradient(x, grad))
}

func (s *callbackState) Constraints(x []float64, _ bool, g []float64) (ok bool) {
	defer s.recover("constraints", &ok)
	return s.check("constraints", s.problem.Constraints(x, g))
}

func (s *callbackState) Jacobian(req bindings.Request) (ok bool) {
	switch r := req.(type) {
	case bindings.SparsityQuery:
		defer s.recover("jacobian_sparsity", &ok)
		if !s.check("jacobian_sparsity", s.problem.JacobianSparsity(int(r.N), int(r.M), r.Rows, r.Cols)) {
			return false
		}
		return s.check("jacobian_sparsity", validatePattern(r.Rows, r.Cols, s.size.M, s.size.N, false))
	case bindings.ValueEvaluation:
		defer s.recover("jacobian_values", &ok)
		return s.check("jacobian_values", s.problem.JacobianValues(r.X, int(r.M), r.Values))
	}
	return false
}

func (s *callbackState) Hessian(req bindings.Request) (ok bool) {
	switch r := req.(type) {
	case bindings.SparsityQuery:
		defer s.recover("hessian_sparsity", &ok)
		if !s.check("hessian_sparsity", s.problem.HessianSparsity(int(r.N), int(r.M), r.Rows, r.Cols)) {
			return false
		}
		return s.check("hessian_sparsity", validatePattern(r.Rows, r.Cols, s.size.N, s.size.N, true))
	case bindings.ValueEvaluation:
		defer s.recover("hessian_values", &ok)
		return s.check("hessian_values", s.problem.HessianValues(r.X, r.ObjFactor, r.Lambda, int(r.M), r.Values))
	}
	return false
}

func (s *callbackState) check(kind string, err error) bool {
	if err != nil {
		s.failed(kind, err)
		return false
	}
	return true
}

func (s *callbackState) failed(kind string, err error) {
	s.logger.Debug(context.Background(), "evaluation failed", "kind", kind, "error", err)
}

// recover stops a panic from unwinding through the native solver's frames.
// The evaluation reports failure and the first panic is kept for Optimize.
func (s *callbackState) recover(kind string, ok *bool) {
	r := recover()
	if r == nil {
		return
	}
	*ok = false
	if s.panicErr == nil {
		s.panicErr = fmt.Errorf("%w: %s: %v", ErrCallbackPanic, kind, r)
		s.logger.Error(context.Background(), "problem callback panicked",
			"kind", kind, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
	}
}

// validatePattern checks that every coordinate lies within a rows×cols
// matrix and, for the Hessian, in the lower triangle.
func validatePattern(iRow, jCol []int32, rows, cols int, lower bool) error {
	for k := range iRow {
		r, c := int(iRow[k]), int(jCol[k])
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return fmt.Errorf("entry %d at (%d,%d) outside %dx%d", k, r, c, rows, cols)
		}
		if lower && r < c {
			return fmt.Errorf("entry %d at (%d,%d) above the diagonal", k, r, c)
		}
	}
	return nil
}
