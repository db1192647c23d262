package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/fasim/pkg/graph"
)

// Overlay contains simulation state to visualize on the graph.
type Overlay struct {
	// Active holds the states of the current configuration.
	Active []string
	// Visited holds every state a trace went through.
	Visited []string
}

// GenerateMermaid produces a Mermaid flowchart from a graph description.
// It applies semantic styling:
// - State: ((Circle))
// - Final state: (((Double circle)))
// - Entry marker: small filled circle pointing at the initial state
// Edges sharing both endpoints are merged into one arrow with a comma separated label.
// It also applies overlay styles (Visited/Active) if provided.
func GenerateMermaid(desc graph.Description, overlay *Overlay) string {
	ids := nodeIDs(desc)

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	if desc.Entry != nil {
		sb.WriteString("    __entry__((\" \"))\n")
		sb.WriteString(fmt.Sprintf("    __entry__ --> %s\n", ids[desc.Entry.To]))
	}

	for _, node := range desc.Nodes {
		opener, closer := "((", "))"
		if node.Final {
			opener, closer = "(((", ")))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", ids[node.Name], opener, escapeMermaid(node.Name), closer))
	}

	for _, e := range mergeEdges(desc.Edges) {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", ids[e.From], escapeMermaid(e.Label), ids[e.To]))
	}

	if desc.Entry != nil {
		sb.WriteString("    classDef entry fill:#000,stroke:#000;\n")
		sb.WriteString("    class __entry__ entry;\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef active fill:#c8e6c9,stroke:#2e7d32,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for _, name := range overlay.Visited {
			id, ok := ids[name]
			if ok && !styled[id] {
				styled[id] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", id))
			}
		}
		for _, name := range overlay.Active {
			if id, ok := ids[name]; ok {
				sb.WriteString(fmt.Sprintf("    class %s active;\n", id))
			}
		}
	}

	return sb.String()
}

// nodeIDs assigns positional identifiers. State names may contain characters (or be
// keywords such as "end") that Mermaid does not accept as node IDs.
func nodeIDs(desc graph.Description) map[string]string {
	ids := make(map[string]string, len(desc.Nodes))
	for i, node := range desc.Nodes {
		ids[node.Name] = fmt.Sprintf("s%d", i)
	}
	return ids
}

// mergeEdges joins the labels of edges with the same endpoints, keeping first-seen order.
func mergeEdges(edges []graph.Edge) []graph.Edge {
	type pair struct{ from, to string }
	index := make(map[pair]int)
	var merged []graph.Edge
	for _, e := range edges {
		p := pair{e.From, e.To}
		if i, ok := index[p]; ok {
			merged[i].Label += ", " + e.Label
			continue
		}
		index[p] = len(merged)
		merged = append(merged, e)
	}
	return merged
}

func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
