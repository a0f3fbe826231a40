package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/problems"
)

func newProblemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "problems",
		Short: "List the bundled problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range slices.Sorted(maps.Keys(problems.Catalog)) {
				s := problems.Catalog[name]().Size()
				if _, err := fmt.Fprintf(out, "%-10s n=%d m=%d nnz_jac=%d nnz_hess=%d\n",
					name, s.N, s.M, s.NNZJacobian, s.NNZHessian); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
