package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/aretw0/fasim"
	presentation "github.com/aretw0/fasim/internal/presentation/graph"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph FILE_OR_NAME",
		Short: "Export the state diagram",
		Long: `Outputs the automaton as a Mermaid flowchart (default), a Graphviz DOT digraph or the
JSON graph description. With --input, the states visited by the simulation and the
final configuration are highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")

			ctx := cmd.Context()
			eng := a.engine()
			automaton, _, err := resolve(ctx, eng, args[0])
			if err != nil {
				return err
			}
			desc := eng.Export(automaton)

			var overlay *presentation.Overlay
			if cmd.Flags().Changed("input") {
				input, _ := cmd.Flags().GetString("input")
				run, err := eng.SimulateWithTrace(ctx, automaton, fasim.Symbols(input))
				if err != nil {
					return err
				}
				overlay = overlayOf(automaton, run)
			}

			out := cmd.OutOrStdout()
			switch formatName {
			case "mermaid":
				fmt.Fprint(out, presentation.GenerateMermaid(desc, overlay))
			case "dot":
				fmt.Fprint(out, presentation.GenerateDOT(desc, overlay))
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(desc)
			default:
				return fmt.Errorf("unknown graph format %q (want mermaid, dot or json)", formatName)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid, dot or json")
	cmd.Flags().StringP("input", "i", "", "Highlight the simulation of this input word")
	return cmd
}

// overlayOf marks every state a traced run went through, and the states it ended in.
func overlayOf(a *domain.Automaton, run *domain.Run) *presentation.Overlay {
	var visited []string
	if st, ok := a.Initial(); ok {
		visited = append(visited, st.Name)
	}
	for _, step := range run.NamedTrace(a) {
		visited = append(visited, step.From...)
		visited = append(visited, step.To...)
	}
	slices.Sort(visited)

	return &presentation.Overlay{
		Active:  run.Final.Names(a),
		Visited: slices.Compact(visited),
	}
}
