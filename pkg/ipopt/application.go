package ipopt

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hsiuhsiu/ipopt-go/internal/bindings"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/logging"
)

// Application configures the solver and optimizes problems. The zero value is
// not usable; construct one with New. Options may be changed between solves,
// and Optimize may run concurrently on distinct problems.
type Application struct {
	mu      sync.Mutex
	options Options
	output  *outputFile
	engine  Engine
	logger  logging.Logger
}

type outputFile struct {
	path       string
	printLevel int32
}

// AppOption customizes an Application.
type AppOption func(*Application)

// WithLogger routes solver diagnostics to l. The default discards them.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithEngine replaces the native engine, typically with a mockengine.Engine
// in tests.
func WithEngine(e Engine) AppOption {
	return func(a *Application) {
		if e != nil {
			a.engine = e
		}
	}
}

// WithOutputFile asks the solver to write its iteration log to path at the
// given print level (0-12).
func WithOutputFile(path string, printLevel int32) AppOption {
	return func(a *Application) {
		a.output = &outputFile{path: path, printLevel: printLevel}
	}
}

// WithOptions seeds the application with a set of options, e.g. one read by
// ReadOptionsFile.
func WithOptions(o Options) AppOption {
	return func(a *Application) {
		a.options.merge(o)
	}
}

// New returns an Application bound to the native Ipopt engine.
func New(opts ...AppOption) *Application {
	a := &Application{
		options: newOptions(),
		engine:  bindings.Native(),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetIntegerOption sets an integer option such as max_iter.
func (a *Application) SetIntegerOption(name string, value int32) *Application {
	a.mu.Lock()
	a.options.Integer[name] = value
	a.mu.Unlock()
	return a
}

// SetNumericOption sets a numeric option such as tol.
func (a *Application) SetNumericOption(name string, value float64) *Application {
	a.mu.Lock()
	a.options.Numeric[name] = value
	a.mu.Unlock()
	return a
}

// SetStringOption sets a string option such as linear_solver.
func (a *Application) SetStringOption(name, value string) *Application {
	a.mu.Lock()
	a.options.String[name] = value
	a.mu.Unlock()
	return a
}

// Options returns a copy of the configured options.
func (a *Application) Options() Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.options.clone()
}

// Optimize solves problem once. It blocks until the solver converges, gives
// up, or fails. Solver outcomes, including failed evaluations, are reported
// through the result's Status; the error is reserved for problems that
// prevented the solve (bad sizes, bad options, missing bindings) and for
// panics raised by the problem, in which case the result is returned too.
func (a *Application) Optimize(problem Problem) (*OptimizationResult, error) {
	const op = "Optimize"
	if problem == nil {
		return nil, &Error{Op: op, Err: ErrNilProblem}
	}

	a.mu.Lock()
	opts := a.options.clone()
	output := a.output
	engine := a.engine
	a.mu.Unlock()

	ctx := context.Background()
	runID := uuid.NewString()
	log := a.logger.With("run_id", runID)

	// Configure.
	size := problem.Size()
	dims, err := nativeDims(size)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if err := opts.validate(); err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	// Bind.
	xL, xU := make([]float64, size.N), make([]float64, size.N)
	gL, gU := make([]float64, size.M), make([]float64, size.M)
	problem.Bounds(xL, xU, gL, gU)

	start := problem.StartingPoint()
	x, zL, zU, lambda, err := initialVectors(start, size)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	result := &OptimizationResult{RunID: runID}
	state := &callbackState{problem: problem, result: result, size: size, logger: log}

	// Create.
	np, err := engine.CreateProblem(dims, xL, xU, gL, gU)
	if err != nil {
		return nil, &Error{Op: op, Err: RemapError(err)}
	}
	defer np.Free()

	// Apply options.
	if err := applyOptions(ctx, log, np, opts); err != nil {
		return nil, &Error{Op: op, Err: RemapError(err)}
	}
	if output != nil {
		if err := np.OpenOutputFile(output.path, output.printLevel); err != nil {
			return nil, &Error{Op: op, Err: RemapError(err)}
		}
	}
	if strings.EqualFold(opts.String["nlp_scaling_method"], "user-scaling") {
		objScaling, xScaling, gScaling := 1.0, ones(size.N), ones(size.M)
		if s, ok := problem.(Scaler); ok {
			s.Scaling(&objScaling, xScaling, gScaling)
		}
		if err := np.SetScaling(objScaling, xScaling, gScaling); err != nil {
			return nil, &Error{Op: op, Err: RemapError(err)}
		}
	}

	// Solve.
	log.Info(ctx, "solve started",
		"n", size.N, "m", size.M, "nnz_jac", size.NNZJacobian, "nnz_hess", size.NNZHessian)

	g := make([]float64, size.M)
	var obj float64
	ud := bindings.Register(state, dims)
	defer bindings.Release(ud)
	status := np.Solve(x, g, &obj, lambda, zL, zU, ud)

	// Finalize.
	result.Status = Status(status)
	result.Solution = Solution{
		X:           x,
		Constraints: g,
		Lambda:      lambda,
		ZL:          zL,
		ZU:          zU,
		Objective:   obj,
	}

	perf := result.Performance
	log.Info(ctx, "solve finished",
		"status", result.Status.String(),
		"objective", obj,
		"eval_f", perf.ObjectiveEvaluations,
		"eval_grad_f", perf.ObjectiveGradientEvaluations,
		"eval_g", perf.ConstraintEvaluations,
		"eval_jac_g", perf.JacobianEvaluations,
		"eval_h", perf.HessianEvaluations,
	)

	if state.panicErr != nil {
		return result, &Error{Op: op, Err: state.panicErr}
	}
	return result, nil
}

// nativeDims validates size and converts it to the native index width.
func nativeDims(size ProblemSize) (Dims, error) {
	fields := []struct {
		name string
		v    int
	}{
		{"n", size.N},
		{"m", size.M},
		{"nnz_jac", size.NNZJacobian},
		{"nnz_hess", size.NNZHessian},
	}
	for _, f := range fields {
		if f.v < 0 {
			return Dims{}, fmt.Errorf("%w: %s = %d", ErrInvalidDimension, f.name, f.v)
		}
		if f.v > math.MaxInt32 {
			return Dims{}, fmt.Errorf("%w: %s = %d", ErrDimensionOverflow, f.name, f.v)
		}
	}
	n, m := uint64(size.N), uint64(size.M)
	if uint64(size.NNZJacobian) > n*m {
		return Dims{}, fmt.Errorf("%w: nnz_jac = %d exceeds n*m = %d", ErrInvalidDimension, size.NNZJacobian, n*m)
	}
	if uint64(size.NNZHessian) > n*(n+1)/2 {
		return Dims{}, fmt.Errorf("%w: nnz_hess = %d exceeds n*(n+1)/2 = %d", ErrInvalidDimension, size.NNZHessian, n*(n+1)/2)
	}
	return Dims{
		N:          int32(size.N),
		M:          int32(size.M),
		NNZJac:     int32(size.NNZJacobian),
		NNZHessian: int32(size.NNZHessian),
	}, nil
}

// initialVectors copies the starting point into solver-owned buffers and
// defaults missing multipliers to ones.
func initialVectors(start InitialSolution, size ProblemSize) (x, zL, zU, lambda []float64, err error) {
	if len(start.X) != size.N {
		return nil, nil, nil, nil, fmt.Errorf("%w: len(x) = %d, want %d", ErrInvalidStartingPoint, len(start.X), size.N)
	}
	pick := func(name string, v []float64, n int) ([]float64, error) {
		if v == nil {
			return ones(n), nil
		}
		if len(v) != n {
			return nil, fmt.Errorf("%w: len(%s) = %d, want %d", ErrInvalidStartingPoint, name, len(v), n)
		}
		return slices.Clone(v), nil
	}
	if zL, err = pick("z_l", start.ZL, size.N); err != nil {
		return nil, nil, nil, nil, err
	}
	if zU, err = pick("z_u", start.ZU, size.N); err != nil {
		return nil, nil, nil, nil, err
	}
	if lambda, err = pick("lambda", start.Lambda, size.M); err != nil {
		return nil, nil, nil, nil, err
	}
	return slices.Clone(start.X), zL, zU, lambda, nil
}

// applyOptions pushes every option into the native handle: integers, then
// strings, then numerics, each in name order.
func applyOptions(ctx context.Context, log logging.Logger, np NativeProblem, opts Options) error {
	for _, name := range slices.Sorted(maps.Keys(opts.Integer)) {
		log.Debug(ctx, "set option", "name", name, "value", opts.Integer[name])
		if err := np.AddIntOption(name, opts.Integer[name]); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(opts.String)) {
		log.Debug(ctx, "set option", "name", name, "value", opts.String[name])
		if err := np.AddStrOption(name, opts.String[name]); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(opts.Numeric)) {
		log.Debug(ctx, "set option", "name", name, "value", opts.Numeric[name])
		if err := np.AddNumOption(name, opts.Numeric[name]); err != nil {
			return err
		}
	}
	return nil
}
