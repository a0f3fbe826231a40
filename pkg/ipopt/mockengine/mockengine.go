package mockengine

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/hsiuhsiu/ipopt-go/internal/bindings"
)

// Status codes returned by Solve. They mirror Ipopt's ApplicationReturnStatus.
const (
	StatusSucceeded       int32 = 0
	StatusMaxIterations   int32 = -1
	StatusStepComputation int32 = -3
	StatusInvalidProblem  int32 = -11
	StatusInvalidNumber   int32 = -13
	StatusInternalError   int32 = -199
)

const (
	defaultMaxIter       = 50
	defaultTol           = 1e-10
	defaultRounds        = 1
	defaultFailureStatus = StatusInvalidNumber
)

// Engine is an in-memory stand-in for the native solver. It records every
// problem it creates and drives the evaluation trampolines exactly as the
// cgo bindings would.
type Engine struct {
	mu       sync.Mutex
	problems []*Problem

	rounds        int
	newton        bool
	maxIter       int
	tol           float64
	failStatus    int32
	createErr     error
	rejectOptions map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRounds sets how many full evaluation rounds a scripted solve performs
// at the starting point.
func WithRounds(n int) Option { return func(e *Engine) { e.rounds = n } }

// WithNewton switches Solve to a projected Newton iteration on the
// objective, stopping when a step moves x by less than tol.
func WithNewton(maxIter int, tol float64) Option {
	return func(e *Engine) {
		e.newton = true
		if maxIter > 0 {
			e.maxIter = maxIter
		}
		if tol > 0 {
			e.tol = tol
		}
	}
}

// WithFailureStatus sets the status returned when an evaluation fails.
func WithFailureStatus(status int32) Option { return func(e *Engine) { e.failStatus = status } }

// WithCreateError makes CreateProblem fail with err.
func WithCreateError(err error) Option { return func(e *Engine) { e.createErr = err } }

// WithRejectedOption makes the named option fail to apply.
func WithRejectedOption(name string) Option {
	return func(e *Engine) { e.rejectOptions[name] = true }
}

// New returns an engine in scripted mode running one evaluation round per
// solve, adjusted by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		rounds:        defaultRounds,
		maxIter:       defaultMaxIter,
		tol:           defaultTol,
		failStatus:    defaultFailureStatus,
		rejectOptions: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ bindings.Engine = (*Engine)(nil)

func (e *Engine) CreateProblem(d bindings.Dims, xL, xU, gL, gU []float64) (bindings.NativeProblem, error) {
	if e.createErr != nil {
		return nil, e.createErr
	}
	if d.N < 0 || d.M < 0 || int(d.N) != len(xL) || int(d.N) != len(xU) || int(d.M) != len(gL) || int(d.M) != len(gU) {
		return nil, fmt.Errorf("%w: bounds do not match dims %+v", bindings.ErrCreateProblem, d)
	}
	p := &Problem{
		engine:     e,
		Dims:       d,
		XL:         slices.Clone(xL),
		XU:         slices.Clone(xU),
		GL:         slices.Clone(gL),
		GU:         slices.Clone(gU),
		IntOptions: make(map[string]int32),
		NumOptions: make(map[string]float64),
		StrOptions: make(map[string]string),
	}
	e.mu.Lock()
	e.problems = append(e.problems, p)
	e.mu.Unlock()
	return p, nil
}

// Problems returns every problem created so far, oldest first.
func (e *Engine) Problems() []*Problem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.problems)
}

// Last returns the most recently created problem, or nil.
func (e *Engine) Last() *Problem {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.problems) == 0 {
		return nil
	}
	return e.problems[len(e.problems)-1]
}

// OptionCall is one recorded Add*Option call.
type OptionCall struct {
	Kind  string // "int", "num" or "str"
	Name  string
	Value any
}

// Call is one trampoline invocation made by Solve.
type Call struct {
	Kind     string // "eval_f", "eval_grad_f", "eval_g", "eval_jac_g" or "eval_h"
	Sparsity bool
	OK       bool
}

// Problem records everything done to one native problem handle.
type Problem struct {
	engine *Engine

	mu   sync.Mutex
	Dims bindings.Dims

	XL, XU, GL, GU []float64

	OptionLog  []OptionCall
	IntOptions map[string]int32
	NumOptions map[string]float64
	StrOptions map[string]string

	Scaled     bool
	ObjScaling float64
	XScaling   []float64
	GScaling   []float64

	OutputPath string
	PrintLevel int32

	Calls []Call

	JacRows, JacCols   []int32
	HessRows, HessCols []int32

	Solves int
	Freed  int
}

var _ bindings.NativeProblem = (*Problem)(nil)

func (p *Problem) AddIntOption(name string, value int32) error {
	return p.addOption(OptionCall{Kind: "int", Name: name, Value: value}, func() { p.IntOptions[name] = value })
}

func (p *Problem) AddNumOption(name string, value float64) error {
	return p.addOption(OptionCall{Kind: "num", Name: name, Value: value}, func() { p.NumOptions[name] = value })
}

func (p *Problem) AddStrOption(name, value string) error {
	return p.addOption(OptionCall{Kind: "str", Name: name, Value: value}, func() { p.StrOptions[name] = value })
}

func (p *Problem) addOption(c OptionCall, set func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Freed > 0 {
		return bindings.ErrProblemFreed
	}
	p.OptionLog = append(p.OptionLog, c)
	if p.engine.rejectOptions[c.Name] {
		return fmt.Errorf("%w: %s", bindings.ErrOptionRejected, c.Name)
	}
	set()
	return nil
}

func (p *Problem) SetScaling(objScaling float64, xScaling, gScaling []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Freed > 0 {
		return bindings.ErrProblemFreed
	}
	p.Scaled = true
	p.ObjScaling = objScaling
	p.XScaling = slices.Clone(xScaling)
	p.GScaling = slices.Clone(gScaling)
	return nil
}

func (p *Problem) OpenOutputFile(path string, printLevel int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Freed > 0 {
		return bindings.ErrProblemFreed
	}
	p.OutputPath, p.PrintLevel = path, printLevel
	return nil
}

func (p *Problem) Free() {
	p.mu.Lock()
	p.Freed++
	p.mu.Unlock()
}

// CallCount returns how many trampoline calls of kind were made, split by
// sparsity queries and value evaluations.
func (p *Problem) CallCount(kind string, sparsity bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Calls {
		if c.Kind == kind && c.Sparsity == sparsity {
			n++
		}
	}
	return n
}

func (p *Problem) record(kind string, sparsity, ok bool) bool {
	p.mu.Lock()
	p.Calls = append(p.Calls, Call{Kind: kind, Sparsity: sparsity, OK: ok})
	p.mu.Unlock()
	return ok
}

// Solve asks for both sparsity patterns, then either runs the configured
// number of evaluation rounds at the starting point or iterates Newton
// steps. Constraint multipliers are passed to the Hessian as given and are
// not updated.
func (p *Problem) Solve(x, g []float64, obj *float64, multG, multXL, multXU []float64, ud bindings.UserData) int32 {
	p.mu.Lock()
	if p.Freed > 0 {
		p.mu.Unlock()
		return StatusInternalError
	}
	p.Solves++
	d := p.Dims
	p.mu.Unlock()

	if len(x) != int(d.N) || len(g) != int(d.M) || obj == nil ||
		len(multG) != int(d.M) || len(multXL) != int(d.N) || len(multXU) != int(d.N) {
		return StatusInvalidProblem
	}
	fail := p.engine.failStatus

	jr, jc := make([]int32, d.NNZJac), make([]int32, d.NNZJac)
	if !p.record("eval_jac_g", true, bindings.EvalJacG(ud, d.N, nil, false, d.M, d.NNZJac, ptr(jr), ptr(jc), nil)) {
		return fail
	}
	hr, hc := make([]int32, d.NNZHessian), make([]int32, d.NNZHessian)
	if !p.record("eval_h", true, bindings.EvalH(ud, d.N, nil, false, 1, d.M, nil, false, d.NNZHessian, ptr(hr), ptr(hc), nil)) {
		return fail
	}
	p.mu.Lock()
	p.JacRows, p.JacCols, p.HessRows, p.HessCols = jr, jc, hr, hc
	p.mu.Unlock()

	p.clip(x)
	ev := &round{
		p:      p,
		ud:     ud,
		d:      d,
		grad:   make([]float64, d.N),
		jac:    make([]float64, d.NNZJac),
		hess:   make([]float64, d.NNZHessian),
		lambda: slices.Clone(multG),
	}

	if !p.engine.newton {
		for range p.engine.rounds {
			if !ev.run(x, g, 1) {
				return fail
			}
		}
		*obj = ev.f
		return StatusSucceeded
	}

	// Newton steps see the objective only.
	clear(ev.lambda)
	next := make([]float64, d.N)
	for range p.engine.maxIter {
		if !ev.run(x, g, 1) {
			return fail
		}
		step, ok := solveDense(int(d.N), hr, hc, ev.hess, ev.grad)
		if !ok {
			return StatusStepComputation
		}
		var moved float64
		for i := range next {
			next[i] = x[i] - step[i]
		}
		p.clip(next)
		for i := range next {
			moved = math.Max(moved, math.Abs(next[i]-x[i]))
		}
		copy(x, next)
		if moved < p.engine.tol {
			if !ev.run(x, g, 1) {
				return fail
			}
			*obj = ev.f
			p.boundMultipliers(x, ev.grad, multXL, multXU)
			return StatusSucceeded
		}
	}
	*obj = ev.f
	return StatusMaxIterations
}

func (p *Problem) clip(x []float64) {
	for i := range x {
		x[i] = math.Min(math.Max(x[i], p.XL[i]), p.XU[i])
	}
}

// boundMultipliers sets z so that grad - zL + zU = 0 on active bounds.
func (p *Problem) boundMultipliers(x, grad, zL, zU []float64) {
	for i := range x {
		zL[i], zU[i] = 0, 0
		switch {
		case x[i] <= p.XL[i] && grad[i] > 0:
			zL[i] = grad[i]
		case x[i] >= p.XU[i] && grad[i] < 0:
			zU[i] = -grad[i]
		}
	}
}

// round holds the buffers reused across evaluation rounds.
type round struct {
	p  *Problem
	ud bindings.UserData
	d  bindings.Dims

	f      float64
	grad   []float64
	jac    []float64
	hess   []float64
	lambda []float64
}

func (r *round) run(x, g []float64, objFactor float64) bool {
	d, ud, p := r.d, r.ud, r.p
	px := ptr(x)
	return p.record("eval_f", false, bindings.EvalF(ud, d.N, px, true, &r.f)) &&
		p.record("eval_grad_f", false, bindings.EvalGradF(ud, d.N, px, false, ptr(r.grad))) &&
		p.record("eval_g", false, bindings.EvalG(ud, d.N, px, false, d.M, ptr(g))) &&
		p.record("eval_jac_g", false, bindings.EvalJacG(ud, d.N, px, false, d.M, d.NNZJac, nil, nil, ptr(r.jac))) &&
		p.record("eval_h", false, bindings.EvalH(ud, d.N, px, false, objFactor, d.M, ptr(r.lambda), true, d.NNZHessian, nil, nil, ptr(r.hess)))
}

// solveDense assembles the symmetric matrix whose lower triangle is given in
// triplet form and solves H*s = b by Cholesky factorisation. It reports false
// when H is not positive definite.
func solveDense(n int, rows, cols []int32, vals, b []float64) ([]float64, bool) {
	if n == 0 {
		return []float64{}, true
	}
	h := mat.NewSymDense(n, nil)
	for k := range vals {
		r, c := int(rows[k]), int(cols[k])
		h.SetSym(r, c, h.At(r, c)+vals[k])
	}
	var chol mat.Cholesky
	if !chol.Factorize(h) {
		return nil, false
	}
	var s mat.VecDense
	if err := chol.SolveVecTo(&s, mat.NewVecDense(n, slices.Clone(b))); err != nil {
		return nil, false
	}
	return s.RawVector().Data, true
}

func ptr[T any](s []T) *T {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}
