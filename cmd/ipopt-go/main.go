// Command ipopt-go solves the bundled benchmark problems with Ipopt.
//
//	ipopt-go solve hs071 --num tol=1e-9 --str mu_strategy=adaptive
//	ipopt-go solve quadratic --mock --format yaml
//	ipopt-go problems
//	ipopt-go version
//
// Flags not given on the command line fall back to IPOPT_* environment
// variables, which may also be loaded from a .env file.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
