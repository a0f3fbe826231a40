// Package ipopt exposes the Ipopt nonlinear-programming solver through a
// Go interface.
//
// A nonlinear program is described by implementing Problem: dimensions,
// bounds, a starting point, and the objective, constraints and their first
// and second derivatives in sparse triplet form. Application.Optimize hands
// the problem to the solver, which calls back into the Problem as often as it
// needs during one blocking solve, and returns an OptimizationResult with the
// final point, multipliers, evaluation counters and Ipopt's raw status.
//
//	app := ipopt.New(ipopt.WithLogger(logging.New(nil)))
//	app.SetNumericOption("tol", 1e-8).
//		SetStringOption("mu_strategy", "adaptive")
//
//	res, err := app.Optimize(problems.NewHS071())
//	if err != nil {
//		return err
//	}
//	if !res.Status.Succeeded() {
//		return fmt.Errorf("solver stopped: %s", res.Status)
//	}
//
// # Native bindings
//
// The solver is linked through cgo and only when building with the ipopt
// tag (go build -tags ipopt). Without it, or with cgo disabled, Optimize
// returns ErrNotBuilt. The mockengine package provides an in-memory engine
// that drives the same callback protocol for tests.
//
// # Callbacks
//
// Ipopt calls five C function pointers with raw buffers and an opaque
// user-data pointer. The bindings translate each call into length-checked
// slices, look up the active solve from the user-data token, and forward to
// the Problem. Jacobian and Hessian calls with a null x are sparsity queries
// and reach JacobianSparsity/HessianSparsity; all others are value
// evaluations. Panics raised by a Problem are contained at the boundary and
// reported as ErrCallbackPanic once the solve returns.
//
// # Threading
//
// Optimize runs the solver on the calling goroutine and re-enters the
// Problem on that same goroutine. Distinct problems may be optimized
// concurrently; a single Problem value must not be.
package ipopt
