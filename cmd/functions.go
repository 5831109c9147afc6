package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rowexec/pkg/function"
	"rowexec/pkg/types"
)

func newFunctionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions [name]",
		Short: "List registered functions and their overloads",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := function.NewRegistry()
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				overloads := reg.Overloads(args[0])
				if len(overloads) == 0 {
					return fmt.Errorf("no function named %q", args[0])
				}
				for _, f := range overloads {
					fmt.Fprintln(out, f.String())
				}
				return nil
			}
			for _, name := range reg.Names() {
				fmt.Fprintf(out, "%-12s %d overload(s)\n", name, len(reg.Overloads(name)))
			}
			return nil
		},
	}
}

func newCastCostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cast-cost FROM TO",
		Short: "Print the implicit cast cost between two types",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := types.ParseLogicalType(args[0])
			if err != nil {
				return err
			}
			to, err := types.ParseLogicalType(args[1])
			if err != nil {
				return err
			}
			cost := types.ImplicitCastCost(from.ID, to.ID)
			if cost == types.NoCast {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: not implicitly castable\n", from, to)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %d\n", from, to, cost)
			return nil
		},
	}
}
