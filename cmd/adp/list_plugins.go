package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/adp-project/adp/internal/registry"
)

var (
	pluginNameStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pluginReferentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type listPluginsOptions struct {
	jsonOutput bool
}

func newListPluginsCmd() *cobra.Command {
	opts := &listPluginsOptions{}

	cmd := &cobra.Command{
		Use:   "list-plugins",
		Short: "List components registered under the " + registry.EntryPointGroup + " group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListPlugins(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runListPlugins(cmd *cobra.Command, opts *listPluginsOptions) error {
	entries := registry.List()
	out := cmd.OutOrStdout()

	if opts.jsonOutput {
		mapping := make(map[string]string, len(entries))
		for _, e := range entries {
			mapping[e.Name] = e.Referent
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(mapping)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "no %s entry points discovered\n", registry.EntryPointGroup)
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%s -> %s\n",
			pluginNameStyle.Render(e.Name),
			pluginReferentStyle.Render(e.Referent))
	}
	return nil
}
