package ipopt_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/ipopt-go/internal/bindings"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/logging"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/mockengine"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/problems"
)

// spy wraps a Quadratic and records how the solver drives it.
type spy struct {
	*problems.Quadratic

	events  []string
	lambdas [][]float64

	size      *ipopt.ProblemSize
	start     *ipopt.InitialSolution
	hessPat   func(rows, cols []int32)
	panicIn   string
	failIn    string
	sizeCalls int
	bndCalls  int
	spCalls   int
}

func newSpy(n int) *spy { return &spy{Quadratic: problems.NewQuadratic(n)} }

func (s *spy) Size() ipopt.ProblemSize {
	s.sizeCalls++
	if s.size != nil {
		return *s.size
	}
	return s.Quadratic.Size()
}

func (s *spy) Bounds(xL, xU, gL, gU []float64) {
	s.bndCalls++
	s.Quadratic.Bounds(xL, xU, gL, gU)
}

func (s *spy) StartingPoint() ipopt.InitialSolution {
	s.spCalls++
	if s.start != nil {
		return *s.start
	}
	return s.Quadratic.StartingPoint()
}

func (s *spy) enter(kind string) error {
	s.events = append(s.events, kind)
	if s.panicIn == kind {
		panic("boom in " + kind)
	}
	if s.failIn == kind {
		return errors.New("cannot evaluate " + kind)
	}
	return nil
}

func (s *spy) Objective(x []float64) (float64, error) {
	if err := s.enter("f"); err != nil {
		return 0, err
	}
	return s.Quadratic.Objective(x)
}

func (s *spy) ObjectiveGradient(x, grad []float64) error {
	if err := s.enter("grad_f"); err != nil {
		return err
	}
	return s.Quadratic.ObjectiveGradient(x, grad)
}

func (s *spy) Constraints(x, g []float64) error {
	if err := s.enter("g"); err != nil {
		return err
	}
	return s.Quadratic.Constraints(x, g)
}

func (s *spy) JacobianSparsity(n, m int, rows, cols []int32) error {
	if err := s.enter("jac_sparsity"); err != nil {
		return err
	}
	return s.Quadratic.JacobianSparsity(n, m, rows, cols)
}

func (s *spy) JacobianValues(x []float64, m int, values []float64) error {
	if err := s.enter("jac_values"); err != nil {
		return err
	}
	return s.Quadratic.JacobianValues(x, m, values)
}

func (s *spy) HessianSparsity(n, m int, rows, cols []int32) error {
	if err := s.enter("hess_sparsity"); err != nil {
		return err
	}
	if s.hessPat != nil {
		s.hessPat(rows, cols)
		return nil
	}
	return s.Quadratic.HessianSparsity(n, m, rows, cols)
}

func (s *spy) HessianValues(x []float64, objFactor float64, lambda []float64, m int, values []float64) error {
	if err := s.enter("hess_values"); err != nil {
		return err
	}
	s.lambdas = append(s.lambdas, append([]float64(nil), lambda...))
	return s.Quadratic.HessianValues(x, objFactor, lambda, m, values)
}

func (s *spy) count(kind string) int {
	n := 0
	for _, e := range s.events {
		if e == kind {
			n++
		}
	}
	return n
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func TestOptimizeQuadraticWithNewton(t *testing.T) {
	eng := mockengine.New(mockengine.WithNewton(0, 0))
	q := problems.NewQuadratic(5)

	res, err := ipopt.New(ipopt.WithEngine(eng)).Optimize(q)
	require.NoError(t, err)

	want, fStar := q.Optimum()
	assert.Equal(t, ipopt.StatusSolveSucceeded, res.Status)
	assert.True(t, res.Status.Succeeded())
	assert.InDeltaSlice(t, want, res.Solution.X, 1e-9)
	assert.InDelta(t, fStar, res.Solution.Objective, 1e-9)

	var sum float64
	for _, v := range res.Solution.X {
		sum += v
	}
	require.Len(t, res.Solution.Constraints, 1)
	assert.InDelta(t, sum, res.Solution.Constraints[0], 1e-12)

	// x_0 = -1 sits on its lower bound with a positive gradient.
	assert.Greater(t, res.Solution.ZL[0], 0.0)
	assert.Zero(t, res.Solution.ZU[0])
	assert.NotEmpty(t, res.RunID)

	p := eng.Last()
	assert.Equal(t, 1, p.Freed)
	assert.Zero(t, bindings.Registered())
}

func TestOptimizeCountersMatchCallbacks(t *testing.T) {
	eng := mockengine.New(mockengine.WithRounds(4))
	res, err := ipopt.New(ipopt.WithEngine(eng)).Optimize(newSpy(3))
	require.NoError(t, err)

	p := eng.Last()
	perf := res.Performance
	assert.Equal(t, uint32(4), perf.ObjectiveEvaluations)
	assert.EqualValues(t, p.CallCount("eval_f", false), perf.ObjectiveEvaluations)
	assert.EqualValues(t, p.CallCount("eval_grad_f", false), perf.ObjectiveGradientEvaluations)
	assert.EqualValues(t, p.CallCount("eval_g", false), perf.ConstraintEvaluations)
	assert.EqualValues(t, p.CallCount("eval_jac_g", false), perf.JacobianEvaluations)
	assert.EqualValues(t, p.CallCount("eval_h", false), perf.HessianEvaluations)
}

// malformedEngine sends one bad objective call and one bad Jacobian call
// before handing over to the mock engine.
type malformedEngine struct{ *mockengine.Engine }

type malformedProblem struct {
	bindings.NativeProblem
	d bindings.Dims
}

func (e malformedEngine) CreateProblem(d bindings.Dims, xL, xU, gL, gU []float64) (bindings.NativeProblem, error) {
	np, err := e.Engine.CreateProblem(d, xL, xU, gL, gU)
	if err != nil {
		return nil, err
	}
	return &malformedProblem{NativeProblem: np, d: d}, nil
}

func (p *malformedProblem) Solve(x, g []float64, obj *float64, multG, multXL, multXU []float64, ud bindings.UserData) int32 {
	var f float64
	bindings.EvalF(ud, p.d.N+1, &x[0], true, &f)
	bindings.EvalJacG(ud, p.d.N, &x[0], true, p.d.M, p.d.NNZJac, nil, nil, nil)
	return p.NativeProblem.Solve(x, g, obj, multG, multXL, multXU, ud)
}

func TestOptimizeCountsMalformedCallbacks(t *testing.T) {
	eng := mockengine.New(mockengine.WithRounds(2))
	s := newSpy(2)
	res, err := ipopt.New(ipopt.WithEngine(malformedEngine{eng})).Optimize(s)
	require.NoError(t, err)

	perf := res.Performance
	assert.Equal(t, uint32(3), perf.ObjectiveEvaluations)
	assert.Equal(t, uint32(3), perf.JacobianEvaluations)
	assert.Equal(t, uint32(2), perf.HessianEvaluations)
	// The malformed calls never reach the problem.
	assert.Equal(t, 2, s.count("f"))
	assert.Equal(t, 2, s.count("jac_values"))
}

func TestOptimizeSetupAndSparsityCalledOnce(t *testing.T) {
	s := newSpy(4)
	_, err := ipopt.New(ipopt.WithEngine(mockengine.New(mockengine.WithRounds(3)))).Optimize(s)
	require.NoError(t, err)

	assert.Equal(t, 1, s.sizeCalls)
	assert.Equal(t, 1, s.bndCalls)
	assert.Equal(t, 1, s.spCalls)
	assert.Equal(t, 1, s.count("jac_sparsity"))
	assert.Equal(t, 1, s.count("hess_sparsity"))
	assert.Equal(t, 3, s.count("hess_values"))

	require.GreaterOrEqual(t, len(s.events), 2)
	assert.ElementsMatch(t, []string{"jac_sparsity", "hess_sparsity"}, s.events[:2])
}

func TestOptimizeDefaultMultipliersAreOnes(t *testing.T) {
	s := newSpy(3)
	res, err := ipopt.New(ipopt.WithEngine(mockengine.New())).Optimize(s)
	require.NoError(t, err)

	require.Len(t, s.lambdas, 1)
	assert.Equal(t, ones(1), s.lambdas[0])
	assert.Equal(t, ones(1), res.Solution.Lambda)
	assert.Equal(t, ones(3), res.Solution.ZL)
	assert.Equal(t, ones(3), res.Solution.ZU)
}

func TestOptimizeExplicitMultipliers(t *testing.T) {
	s := newSpy(2)
	s.start = &ipopt.InitialSolution{X: []float64{0, 0}, Lambda: []float64{3}}
	_, err := ipopt.New(ipopt.WithEngine(mockengine.New())).Optimize(s)
	require.NoError(t, err)
	require.Len(t, s.lambdas, 1)
	assert.Equal(t, []float64{3}, s.lambdas[0])
}

func TestOptimizeRejectsUpperTriangleHessian(t *testing.T) {
	s := newSpy(2)
	s.hessPat = func(rows, cols []int32) {
		rows[0], cols[0] = 0, 0
		rows[1], cols[1] = 0, 1
	}
	eng := mockengine.New()
	res, err := ipopt.New(ipopt.WithEngine(eng)).Optimize(s)
	require.NoError(t, err)

	assert.Equal(t, ipopt.StatusInvalidNumberDetected, res.Status)
	assert.False(t, res.Status.Succeeded())
	assert.Zero(t, s.count("hess_values"))
	assert.Equal(t, 1, eng.Last().Freed)
}

func TestOptimizeEvaluationFailureIsStatus(t *testing.T) {
	s := newSpy(2)
	s.failIn = "grad_f"
	eng := mockengine.New(mockengine.WithFailureStatus(int32(ipopt.StatusRestorationFailed)))
	res, err := ipopt.New(ipopt.WithEngine(eng)).Optimize(s)
	require.NoError(t, err)

	assert.Equal(t, ipopt.StatusRestorationFailed, res.Status)
	assert.Equal(t, uint32(1), res.Performance.ObjectiveGradientEvaluations)
	assert.Zero(t, res.Performance.ConstraintEvaluations)
}

func TestOptimizePanicIsContained(t *testing.T) {
	s := newSpy(2)
	s.panicIn = "g"
	eng := mockengine.New()
	res, err := ipopt.New(ipopt.WithEngine(eng)).Optimize(s)

	require.ErrorIs(t, err, ipopt.ErrCallbackPanic)
	assert.Contains(t, err.Error(), "boom in g")
	require.NotNil(t, res)
	assert.Equal(t, ipopt.StatusInvalidNumberDetected, res.Status)
	assert.Equal(t, uint32(1), res.Performance.ConstraintEvaluations)
	assert.Equal(t, 1, eng.Last().Freed)
	assert.Zero(t, bindings.Registered())
}

func TestOptimizeOptionsOrderAndLastWins(t *testing.T) {
	eng := mockengine.New()
	app := ipopt.New(ipopt.WithEngine(eng))
	app.SetIntegerOption("max_iter", 5).
		SetNumericOption("tol", 1e-6).
		SetStringOption("mu_strategy", "monotone").
		SetIntegerOption("print_level", 0).
		SetStringOption("mu_strategy", "adaptive").
		SetIntegerOption("max_iter", 7)

	_, err := app.Optimize(newSpy(2))
	require.NoError(t, err)

	p := eng.Last()
	assert.Equal(t, []mockengine.OptionCall{
		{Kind: "int", Name: "max_iter", Value: int32(7)},
		{Kind: "int", Name: "print_level", Value: int32(0)},
		{Kind: "str", Name: "mu_strategy", Value: "adaptive"},
		{Kind: "num", Name: "tol", Value: 1e-6},
	}, p.OptionLog)
	assert.False(t, p.Scaled)
	assert.Equal(t, int32(7), app.Options().Integer["max_iter"])
}

func TestOptimizeRejectsNulInOption(t *testing.T) {
	eng := mockengine.New()
	app := ipopt.New(ipopt.WithEngine(eng)).SetStringOption("linear_solver", "ma\x0057")

	_, err := app.Optimize(newSpy(2))
	require.ErrorIs(t, err, ipopt.ErrInvalidOptionString)
	assert.Empty(t, eng.Problems())

	app = ipopt.New(ipopt.WithEngine(eng)).SetIntegerOption("max\x00iter", 1)
	_, err = app.Optimize(newSpy(2))
	require.ErrorIs(t, err, ipopt.ErrInvalidOptionString)
}

func TestOptimizeOptionRejectedFreesProblem(t *testing.T) {
	eng := mockengine.New(mockengine.WithRejectedOption("bogus"))
	_, err := ipopt.New(ipopt.WithEngine(eng)).SetIntegerOption("bogus", 1).Optimize(newSpy(2))

	require.ErrorIs(t, err, ipopt.ErrOptionRejected)
	p := eng.Last()
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Freed)
	assert.Zero(t, p.Solves)
}

func TestOptimizeUserScaling(t *testing.T) {
	// Ipopt matches string option values case-insensitively.
	for _, method := range []string{"user-scaling", "User-Scaling", "USER-SCALING"} {
		t.Run(method, func(t *testing.T) {
			s := newSpy(3)
			s.Scale = -1
			eng := mockengine.New()
			_, err := ipopt.New(ipopt.WithEngine(eng)).
				SetStringOption("nlp_scaling_method", method).
				Optimize(s)
			require.NoError(t, err)

			p := eng.Last()
			assert.True(t, p.Scaled)
			assert.Equal(t, -1.0, p.ObjScaling)
			assert.Equal(t, ones(3), p.XScaling)
			assert.Equal(t, ones(1), p.GScaling)
		})
	}
}

func TestOptimizeOutputFile(t *testing.T) {
	eng := mockengine.New()
	_, err := ipopt.New(ipopt.WithEngine(eng), ipopt.WithOutputFile("ipopt.out", 5)).Optimize(newSpy(1))
	require.NoError(t, err)
	assert.Equal(t, "ipopt.out", eng.Last().OutputPath)
	assert.Equal(t, int32(5), eng.Last().PrintLevel)
}

func TestOptimizeDimensionErrors(t *testing.T) {
	cases := []struct {
		name string
		size ipopt.ProblemSize
		want error
	}{
		{"negative n", ipopt.ProblemSize{N: -1}, ipopt.ErrInvalidDimension},
		{"n overflow", ipopt.ProblemSize{N: math.MaxInt32 + 1}, ipopt.ErrDimensionOverflow},
		{"nnz_jac overflow", ipopt.ProblemSize{N: 1, NNZJacobian: math.MaxInt32 + 1}, ipopt.ErrDimensionOverflow},
		{"nnz_jac too large", ipopt.ProblemSize{N: 2, M: 1, NNZJacobian: 3}, ipopt.ErrInvalidDimension},
		{"nnz_hess too large", ipopt.ProblemSize{N: 2, NNZHessian: 4}, ipopt.ErrInvalidDimension},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSpy(2)
			s.size = &tc.size
			eng := mockengine.New()
			_, err := ipopt.New(ipopt.WithEngine(eng)).Optimize(s)
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, eng.Problems())
			assert.Zero(t, s.bndCalls)
		})
	}
}

func TestOptimizeInvalidStartingPoint(t *testing.T) {
	for name, start := range map[string]ipopt.InitialSolution{
		"short x":      {X: []float64{0}},
		"short lambda": {X: []float64{0, 0}, Lambda: []float64{}},
		"long z_l":     {X: []float64{0, 0}, ZL: []float64{1, 1, 1}},
	} {
		t.Run(name, func(t *testing.T) {
			s := newSpy(2)
			s.start = &start
			eng := mockengine.New()
			_, err := ipopt.New(ipopt.WithEngine(eng)).Optimize(s)
			require.ErrorIs(t, err, ipopt.ErrInvalidStartingPoint)
			assert.Empty(t, eng.Problems())
		})
	}
}

func TestOptimizeCreateFailure(t *testing.T) {
	eng := mockengine.New(mockengine.WithCreateError(bindings.ErrCreateProblem))
	res, err := ipopt.New(ipopt.WithEngine(eng)).Optimize(newSpy(2))
	assert.Nil(t, res)
	require.ErrorIs(t, err, ipopt.ErrCreateProblem)

	var opErr *ipopt.Error
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "Optimize", opErr.Op)
}

func TestOptimizeNilProblem(t *testing.T) {
	_, err := ipopt.New().Optimize(nil)
	assert.ErrorIs(t, err, ipopt.ErrNilProblem)
}

func TestOptimizeLogsRunID(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(slog.New(slog.NewJSONHandler(&buf, nil)))

	res, err := ipopt.New(ipopt.WithEngine(mockengine.New()), ipopt.WithLogger(l)).Optimize(newSpy(2))
	require.NoError(t, err)

	var finished map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		assert.Equal(t, res.RunID, rec["run_id"])
		if rec["msg"] == "solve finished" {
			finished = rec
		}
	}
	require.NotNil(t, finished)
	assert.Equal(t, "Solve_Succeeded", finished["status"])
	assert.EqualValues(t, 1, finished["eval_f"])
}

func TestOptimizeRunsConcurrently(t *testing.T) {
	eng := mockengine.New(mockengine.WithNewton(0, 0))
	app := ipopt.New(ipopt.WithEngine(eng))

	const workers = 8
	errs := make(chan error, workers)
	for range workers {
		go func() {
			q := problems.NewQuadratic(4)
			res, err := app.Optimize(q)
			if err == nil && !res.Status.Succeeded() {
				err = errors.New(res.Status.String())
			}
			errs <- err
		}()
	}
	for range workers {
		assert.NoError(t, <-errs)
	}
	assert.Len(t, eng.Problems(), workers)
	assert.Zero(t, bindings.Registered())
}
