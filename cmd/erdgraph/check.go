package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"erdgraph/internal/expr"
)

var checkCmd = &cobra.Command{
	Use:   "check EXPR",
	Short: "Validate a check constraint expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := expr.Validate(args[0]).Err(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	},
}
