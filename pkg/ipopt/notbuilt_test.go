//go:build !cgo || !ipopt

package ipopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyProblem struct{}

func (emptyProblem) Size() ProblemSize { return ProblemSize{N: 1} }
func (emptyProblem) Bounds(_, _, _, _ []float64) {}
func (emptyProblem) StartingPoint() InitialSolution { return InitialSolution{X: []float64{0}} }
func (emptyProblem) Objective([]float64) (float64, error) { return 0, nil }
func (emptyProblem) ObjectiveGradient(_, _ []float64) error { return nil }
func (emptyProblem) Constraints(_, _ []float64) error { return nil }
func (emptyProblem) JacobianSparsity(_, _ int, _, _ []int32) error { return nil }
func (emptyProblem) JacobianValues([]float64, int, []float64) error { return nil }
func (emptyProblem) HessianSparsity(_, _ int, _, _ []int32) error { return nil }
func (emptyProblem) HessianValues([]float64, float64, []float64, int, []float64) error { return nil }

func TestOptimizeWithoutNativeBindings(t *testing.T) {
	res, err := New().Optimize(emptyProblem{})
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrNotBuilt)
	assert.Equal(t, UpstreamPinned, UpstreamVersion())
	assert.Equal(t, Version, WrapperVersion())
}
