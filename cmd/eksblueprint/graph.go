package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nordforge/eksblueprint/internal/graph"
	"github.com/nordforge/eksblueprint/stack"
)

func newGraphCmd() *cobra.Command {
	var (
		opts           composeOptions
		outputFormat   string
		clusterByStack bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate DOT graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph showing resource dependencies.

The output can be rendered with Graphviz:
    eksblueprint graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    eksblueprint graph -f mermaid

Examples:
    eksblueprint graph
    eksblueprint graph -c                # cluster by stack
    eksblueprint graph --pipeline -f mermaid`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, outputFormat, clusterByStack)
		},
	}

	addComposeFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&clusterByStack, "cluster", "c", false, "Group resources into one subgraph per stack")

	return cmd
}

func runGraph(opts composeOptions, format string, clusterByStack bool) error {
	assemblies, _, err := composeAssemblies(opts)
	if err != nil {
		return err
	}

	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	// Flatten all selected stacks into one graph.
	combined := stack.NewAssembly("platform")
	for _, a := range assemblies {
		for _, s := range a.Stacks() {
			combined.Add(s)
		}
	}

	gen := &graph.Generator{
		Format:         graphFormat,
		ClusterByStack: clusterByStack,
	}

	return gen.Generate(combined, os.Stdout)
}
