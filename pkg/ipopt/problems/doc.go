// Package problems holds small nonlinear programs with known solutions. They
// are used by the command-line solver, the examples and the tests.
package problems

import "github.com/hsiuhsiu/ipopt-go/pkg/ipopt"

// Catalog maps the names accepted by the command-line solver to
// constructors.
var Catalog = map[string]func() ipopt.Problem{
	"hs071":     func() ipopt.Problem { return NewHS071() },
	"quadratic": func() ipopt.Problem { return NewQuadratic(5) },
}
