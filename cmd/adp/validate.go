package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adp-project/adp/internal/engine"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <spec>",
		Short: "Parse a spec and resolve its components without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specPath := args[0]
			if _, err := os.Stat(specPath); err != nil {
				if os.IsNotExist(err) {
					return exitWithCode(2, "spec file not found: %s", specPath)
				}
				return err
			}

			if err := engine.Validate(specPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", specPath)
			return nil
		},
	}
}
