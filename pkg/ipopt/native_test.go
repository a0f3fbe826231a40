//go:build cgo && ipopt

package ipopt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/ipopt-go/internal/bindings"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/problems"
)

func quietApp() *ipopt.Application {
	return ipopt.New().
		SetIntegerOption("print_level", 0).
		SetStringOption("sb", "yes").
		SetNumericOption("tol", 1e-9)
}

func TestNativeHS071(t *testing.T) {
	res, err := quietApp().SetStringOption("mu_strategy", "adaptive").Optimize(problems.NewHS071())
	require.NoError(t, err)
	require.True(t, res.Status.Succeeded(), res.Status.String())

	assert.InDelta(t, problems.HS071Objective, res.Solution.Objective, 1e-6)
	assert.InDeltaSlice(t, problems.HS071Solution, res.Solution.X, 1e-5)
	assert.InDelta(t, 25, res.Solution.Constraints[0], 1e-6)
	assert.InDelta(t, 40, res.Solution.Constraints[1], 1e-6)

	perf := res.Performance
	assert.Positive(t, perf.ObjectiveEvaluations)
	assert.Positive(t, perf.HessianEvaluations)
	assert.Zero(t, bindings.Registered())
}

func TestNativeQuadratic(t *testing.T) {
	q := problems.NewQuadratic(6)
	res, err := quietApp().Optimize(q)
	require.NoError(t, err)
	require.True(t, res.Status.Succeeded(), res.Status.String())

	want, fStar := q.Optimum()
	assert.InDeltaSlice(t, want, res.Solution.X, 1e-6)
	assert.InDelta(t, fStar, res.Solution.Objective, 1e-6)
}

func TestNativeUserScalingMaximizes(t *testing.T) {
	// A negative objective scaling flips min into max, pushing every
	// variable to the bound farthest from its centre.
	q := problems.NewQuadratic(3)
	q.Scale = -1
	res, err := quietApp().SetStringOption("nlp_scaling_method", "user-scaling").Optimize(q)
	require.NoError(t, err)
	require.True(t, res.Status.Succeeded(), res.Status.String())
	assert.InDeltaSlice(t, []float64{1, 1, -1}, res.Solution.X, 1e-6)
}

func TestNativeUnknownOptionRejected(t *testing.T) {
	_, err := quietApp().SetIntegerOption("no_such_option", 1).Optimize(problems.NewHS071())
	assert.ErrorIs(t, err, ipopt.ErrOptionRejected)
}

func TestNativeMaxIter(t *testing.T) {
	res, err := quietApp().SetIntegerOption("max_iter", 1).Optimize(problems.NewHS071())
	require.NoError(t, err)
	assert.Equal(t, ipopt.StatusMaximumIterationsExceeded, res.Status)
}

func TestNativeVersion(t *testing.T) {
	assert.NotEmpty(t, ipopt.UpstreamVersion())
}
