package main

import (
	"fmt"
	"sort"
	"strings"

	graphpkg "github.com/mercurysync/graphrunner/graph"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Introspect a graph manifest",
	}
	cmd.AddCommand(newGraphDescribeCmd(), newGraphDotCmd())
	return cmd
}

func newGraphDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <graph_path>",
		Short: "Print each stage's generation, kind, and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := assemble(args[0])
			if err != nil {
				return err
			}
			for genID, level := range g.Generations {
				names := append([]string(nil), level...)
				sort.Strings(names)
				for _, name := range names {
					s := g.Stages[name]
					fmt.Printf("gen=%d stage=%s kind=%s deps=%v\n", genID, s.Name, s.Kind, s.Dependencies)
				}
			}
			return nil
		},
	}
}

// newGraphDotCmd emits Graphviz DOT for the assembled stage DAG, a
// supplemental convenience grounded in dag's existing generation model
// — zero new dependencies, the output is handwritten DOT syntax.
func newGraphDotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dot <graph_path>",
		Short: "Emit the assembled graph as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := assemble(args[0])
			if err != nil {
				return err
			}
			fmt.Print(toDOT(g))
			return nil
		},
	}
}

func toDOT(g *graphpkg.Graph) string {
	var b strings.Builder
	b.WriteString("digraph graphrunner {\n")
	names := make([]string, 0, len(g.Stages))
	for name := range g.Stages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := g.Stages[name]
		fmt.Fprintf(&b, "  %q [label=%q];\n", name, fmt.Sprintf("%s (%s)", name, s.Kind))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %q -> %q;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	return b.String()
}
