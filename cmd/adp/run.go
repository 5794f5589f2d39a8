package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adp-project/adp/internal/engine"
	"github.com/adp-project/adp/internal/state"
)

type runOptions struct {
	workdir     string
	stateFile   string
	strictState bool
	preview     int
}

func newRunCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <spec>",
		Short: "Run a pipeline spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, rootFlags, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.workdir, "workdir", ".", "Working directory for relative paths")
	cmd.Flags().StringVar(&opts.stateFile, "state", "", "Path to a JSON state file (overrides the spec's state block)")
	cmd.Flags().BoolVar(&opts.strictState, "strict-state", false, "Fail on a corrupt state file instead of starting empty")
	cmd.Flags().IntVar(&opts.preview, "preview", -1, "Records logged per stage in steps mode (-1: spec default)")

	return cmd
}

func runRun(cmd *cobra.Command, rootFlags *rootFlags, opts *runOptions, specPath string) error {
	if _, err := os.Stat(specPath); err != nil {
		if os.IsNotExist(err) {
			return exitWithCode(2, "spec file not found: %s", specPath)
		}
		return err
	}

	log, err := newLogger(rootFlags)
	if err != nil {
		return err
	}

	engineOpts := engine.Options{
		WorkDir:     opts.workdir,
		Log:         log,
		StrictState: opts.strictState,
		Preview:     opts.preview,
	}
	if opts.stateFile != "" {
		mode := state.CorruptStartEmpty
		if opts.strictState {
			mode = state.CorruptFail
		}
		st, err := state.NewFileState(opts.stateFile, mode)
		if err != nil {
			return err
		}
		engineOpts.State = st
	}

	summary, err := engine.Run(cmd.Context(), specPath, engineOpts)
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, summary *engine.RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	for _, st := range summary.Stages {
		if st.Artifact != "" {
			fmt.Fprintf(out, "  %-20s %-10s %6d records  -> %s\n", st.ID, st.Role, st.Records, st.Artifact)
			continue
		}
		fmt.Fprintf(out, "  %-20s %-10s %6d records\n", st.ID, st.Role, st.Records)
	}
}
