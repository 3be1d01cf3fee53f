// Package graph generates DOT and Mermaid format dependency graphs from
// stack resources.
package graph

import (
	"io"
	"strings"

	"github.com/emicklei/dot"

	"github.com/nordforge/eksblueprint/stack"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from assembled stacks.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByStack groups resources into one subgraph per stack.
	ClusterByStack bool
}

// Generate creates a dependency graph for the assembly and writes it to w.
func (g *Generator) Generate(a *stack.Assembly, w io.Writer) error {
	graph := g.buildGraph(a)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(a *stack.Assembly) (string, error) {
	var sb strings.Builder
	if err := g.Generate(a, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure from the assembly's stacks.
func (g *Generator) buildGraph(a *stack.Assembly) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	// Set default node style
	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	// Set default edge style
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	for _, s := range a.Stacks() {
		target := graph
		if g.ClusterByStack {
			cluster := graph.Subgraph("cluster_"+s.Name(), dot.ClusterOption{})
			cluster.Attr("label", s.Name())
			cluster.Attr("style", "rounded")
			cluster.Attr("bgcolor", "lightyellow")
			target = cluster
		}

		for _, name := range s.Resources() {
			n := target.Node(nodeID(s, name))
			n.Label(name + "\\n[" + s.Resource(name).ResourceType() + "]")
		}
	}

	// Edges after nodes so every endpoint lands in its stack's subgraph.
	for _, s := range a.Stacks() {
		for _, name := range s.Resources() {
			for _, dep := range s.Dependencies(name) {
				from := graph.Node(nodeID(s, name))
				to := graph.Node(nodeID(s, dep))
				graph.Edge(from, to)
			}
		}
	}

	return graph
}

// nodeID disambiguates resources with the same logical name across stacks.
func nodeID(s *stack.Stack, name string) string {
	return s.Name() + "/" + name
}
