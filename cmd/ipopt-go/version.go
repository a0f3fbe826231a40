package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ipopt-go %s\nipopt %s\n",
				ipopt.WrapperVersion(), ipopt.UpstreamVersion())
			return err
		},
	}
}
