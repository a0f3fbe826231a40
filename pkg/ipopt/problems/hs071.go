package problems

import (
	"fmt"

	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt"
)

// HS071 is problem 71 of the Hock–Schittkowski collection, the example that
// ships with Ipopt:
//
//	min   x1*x4*(x1 + x2 + x3) + x3
//	s.t.  x1*x2*x3*x4                >= 25
//	      x1² + x2² + x3² + x4²       = 40
//	      1 <= x1, x2, x3, x4 <= 5
//
// starting from (1, 5, 5, 1). The optimum is f* ≈ 17.014017 at
// x* ≈ (1.00000000, 4.74299963, 3.82114998, 1.37940829).
type HS071 struct{}

const (
	hs071N       = 4
	hs071M       = 2
	hs071NNZJac  = hs071N * hs071M
	hs071NNZHess = hs071N * (hs071N + 1) / 2
)

// HS071Objective is the published optimal objective value.
const HS071Objective = 17.014017145179164

// HS071Solution is the published optimal point.
var HS071Solution = []float64{1.0, 4.742999643601108, 3.821149978948624, 1.3794082932653205}

// NewHS071 returns the HS071 benchmark.
func NewHS071() *HS071 { return &HS071{} }

func (*HS071) Size() ipopt.ProblemSize {
	return ipopt.ProblemSize{N: hs071N, M: hs071M, NNZJacobian: hs071NNZJac, NNZHessian: hs071NNZHess}
}

func (*HS071) Bounds(xL, xU, gL, gU []float64) {
	for i := range xL {
		xL[i], xU[i] = 1, 5
	}
	gL[0], gU[0] = 25, 2e19
	gL[1], gU[1] = 40, 40
}

func (*HS071) StartingPoint() ipopt.InitialSolution {
	return ipopt.InitialSolution{X: []float64{1, 5, 5, 1}}
}

func (*HS071) Objective(x []float64) (float64, error) {
	if err := checkLen("x", x, hs071N); err != nil {
		return 0, err
	}
	return x[0]*x[3]*(x[0]+x[1]+x[2]) + x[2], nil
}

func (*HS071) ObjectiveGradient(x, grad []float64) error {
	grad[0] = x[0]*x[3] + x[3]*(x[0]+x[1]+x[2])
	grad[1] = x[0] * x[3]
	grad[2] = x[0]*x[3] + 1
	grad[3] = x[0] * (x[0] + x[1] + x[2])
	return nil
}

func (*HS071) Constraints(x, g []float64) error {
	g[0] = x[0] * x[1] * x[2] * x[3]
	g[1] = x[0]*x[0] + x[1]*x[1] + x[2]*x[2] + x[3]*x[3]
	return nil
}

// JacobianSparsity declares the Jacobian dense.
func (*HS071) JacobianSparsity(n, m int, rows, cols []int32) error {
	if n != hs071N || m != hs071M {
		return fmt.Errorf("hs071: unexpected size %dx%d", m, n)
	}
	k := 0
	for r := 0; r < m; r++ {
		for c := 0; c < n; c++ {
			rows[k], cols[k] = int32(r), int32(c)
			k++
		}
	}
	return nil
}

func (*HS071) JacobianValues(x []float64, _ int, values []float64) error {
	values[0] = x[1] * x[2] * x[3]
	values[1] = x[0] * x[2] * x[3]
	values[2] = x[0] * x[1] * x[3]
	values[3] = x[0] * x[1] * x[2]

	values[4] = 2 * x[0]
	values[5] = 2 * x[1]
	values[6] = 2 * x[2]
	values[7] = 2 * x[3]
	return nil
}

// HessianSparsity declares the full lower triangle, row by row.
func (*HS071) HessianSparsity(n, _ int, rows, cols []int32) error {
	return lowerTriangle(n, rows, cols)
}

func (*HS071) HessianValues(x []float64, objFactor float64, lambda []float64, _ int, values []float64) error {
	// objective
	values[0] = objFactor * (2 * x[3])
	values[1] = objFactor * x[3]
	values[2] = 0
	values[3] = objFactor * x[3]
	values[4] = 0
	values[5] = 0
	values[6] = objFactor * (2*x[0] + x[1] + x[2])
	values[7] = objFactor * x[0]
	values[8] = objFactor * x[0]
	values[9] = 0

	// first constraint
	values[1] += lambda[0] * (x[2] * x[3])
	values[3] += lambda[0] * (x[1] * x[3])
	values[4] += lambda[0] * (x[0] * x[3])
	values[6] += lambda[0] * (x[1] * x[2])
	values[7] += lambda[0] * (x[0] * x[2])
	values[8] += lambda[0] * (x[0] * x[1])

	// second constraint
	values[0] += lambda[1] * 2
	values[2] += lambda[1] * 2
	values[5] += lambda[1] * 2
	values[9] += lambda[1] * 2
	return nil
}

func lowerTriangle(n int, rows, cols []int32) error {
	if want := n * (n + 1) / 2; len(rows) != want || len(cols) != want {
		return fmt.Errorf("lower triangle of %d needs %d entries, got %d", n, want, len(rows))
	}
	k := 0
	for r := 0; r < n; r++ {
		for c := 0; c <= r; c++ {
			rows[k], cols[k] = int32(r), int32(c)
			k++
		}
	}
	return nil
}

func checkLen(name string, v []float64, n int) error {
	if len(v) != n {
		return fmt.Errorf("len(%s) = %d, want %d", name, len(v), n)
	}
	return nil
}
