// Package mockengine provides an in-memory solver engine for testing and
// examples.
//
// Engine implements the same contract as the native Ipopt bindings: it
// creates problem handles, accepts options, scaling and an output file, and
// during Solve calls the five evaluation callbacks through the very
// trampolines the cgo exports use. Everything it is asked to do is recorded
// on the returned Problem so tests can assert on it.
//
// # Usage
//
//	eng := mockengine.New(mockengine.WithNewton(0, 0))
//	app := ipopt.New(ipopt.WithEngine(eng))
//
//	res, err := app.Optimize(problems.NewQuadratic(5))
//	...
//	p := eng.Last()
//	fmt.Println(p.CallCount("eval_h", true), p.Freed)
//
// # Modes
//
// By default Solve asks for both sparsity patterns and then performs one
// evaluation round (f, ∇f, g, J, H) at the starting point, clipped to the
// bounds, and reports success. WithRounds repeats the round. WithNewton
// instead iterates projected Newton steps on the objective, which is enough
// to solve bound-constrained convex problems.
//
// An evaluation that reports failure aborts Solve with the status set by
// WithFailureStatus, -13 (Invalid_Number_Detected) unless changed.
//
// # Limitations
//
// Mockengine is designed for testing and examples only:
//   - Constraints are evaluated but not enforced
//   - Constraint multipliers are never updated
//   - Scaling and the output file are recorded but not applied
package mockengine
