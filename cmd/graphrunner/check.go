package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <graph_path>",
		Short: "Validate a graph manifest without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := assemble(args[0])
			if err != nil {
				if ce, ok := err.(*cliError); ok && ce.code == exitAssembly {
					return ce
				}
				return &cliError{code: exitCheckFailure, err: err}
			}
			fmt.Printf("ok: %d stages, %d generations\n", len(g.Stages), len(g.Generations))
			return nil
		},
	}
}
