package problems

import (
	"fmt"
	"math"
	"slices"

	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt"
)

// Quadratic is the separable bound-constrained program
//
//	min  ½ Σ w_i (x_i - c_i)²
//	s.t. lo_i <= x_i <= hi_i
//	     -inf <= Σ x_i <= +inf
//
// with w_i > 0. The single constraint is free and only exercises the
// Jacobian path. The optimum is c clipped to the bounds.
type Quadratic struct {
	Weights []float64
	Center  []float64
	Lower   []float64
	Upper   []float64
	Start   []float64

	// Scale, when non-zero, is reported as the objective scaling factor.
	Scale float64
}

// NewQuadratic returns an n-variable instance with weights i+1, centre
// i - n/2, bounds [-1, 1] and a zero start.
func NewQuadratic(n int) *Quadratic {
	q := &Quadratic{
		Weights: make([]float64, n),
		Center:  make([]float64, n),
		Lower:   make([]float64, n),
		Upper:   make([]float64, n),
		Start:   make([]float64, n),
	}
	for i := range n {
		q.Weights[i] = float64(i + 1)
		q.Center[i] = float64(i) - float64(n)/2
		q.Lower[i], q.Upper[i] = -1, 1
	}
	return q
}

// Optimum returns the analytic minimiser and its objective value.
func (q *Quadratic) Optimum() ([]float64, float64) {
	x := make([]float64, len(q.Center))
	for i, c := range q.Center {
		x[i] = math.Min(math.Max(c, q.Lower[i]), q.Upper[i])
	}
	f, _ := q.Objective(x)
	return x, f
}

func (q *Quadratic) Size() ipopt.ProblemSize {
	n := len(q.Center)
	return ipopt.ProblemSize{N: n, M: 1, NNZJacobian: n, NNZHessian: n}
}

func (q *Quadratic) Bounds(xL, xU, gL, gU []float64) {
	copy(xL, q.Lower)
	copy(xU, q.Upper)
	gL[0], gU[0] = -2e19, 2e19
}

func (q *Quadratic) StartingPoint() ipopt.InitialSolution {
	return ipopt.InitialSolution{X: slices.Clone(q.Start)}
}

func (q *Quadratic) Objective(x []float64) (float64, error) {
	if err := checkLen("x", x, len(q.Center)); err != nil {
		return 0, err
	}
	var f float64
	for i, c := range q.Center {
		d := x[i] - c
		f += 0.5 * q.Weights[i] * d * d
	}
	return f, nil
}

func (q *Quadratic) ObjectiveGradient(x, grad []float64) error {
	for i, c := range q.Center {
		grad[i] = q.Weights[i] * (x[i] - c)
	}
	return nil
}

func (q *Quadratic) Constraints(x, g []float64) error {
	var s float64
	for _, v := range x {
		s += v
	}
	g[0] = s
	return nil
}

func (q *Quadratic) JacobianSparsity(n, m int, rows, cols []int32) error {
	if m != 1 {
		return fmt.Errorf("quadratic: unexpected m = %d", m)
	}
	for i := range n {
		rows[i], cols[i] = 0, int32(i)
	}
	return nil
}

func (q *Quadratic) JacobianValues(_ []float64, _ int, values []float64) error {
	fill(values, 1)
	return nil
}

// HessianSparsity declares the diagonal.
func (q *Quadratic) HessianSparsity(n, _ int, rows, cols []int32) error {
	for i := range n {
		rows[i], cols[i] = int32(i), int32(i)
	}
	return nil
}

func (q *Quadratic) HessianValues(_ []float64, objFactor float64, _ []float64, _ int, values []float64) error {
	for i, w := range q.Weights {
		values[i] = objFactor * w
	}
	return nil
}

// Scaling implements ipopt.Scaler.
func (q *Quadratic) Scaling(objScaling *float64, xScaling, gScaling []float64) {
	ipopt.DefaultScaling(objScaling, xScaling, gScaling)
	if q.Scale != 0 {
		*objScaling = q.Scale
	}
}

func fill(s []float64, v float64) {
	for i := range s {
		s[i] = v
	}
}
