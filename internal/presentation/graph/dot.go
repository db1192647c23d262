package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/fasim/pkg/graph"
)

// dotEntryID names the entry marker. State names cannot start with '#', so it never
// collides with a state node.
const dotEntryID = `"#entry"`

// GenerateDOT produces a Graphviz digraph from a graph description.
// Final states are drawn as double circles and the entry marker as a point.
func GenerateDOT(desc graph.Description, overlay *Overlay) string {
	active := make(map[string]bool)
	visited := make(map[string]bool)
	if overlay != nil {
		for _, name := range overlay.Active {
			active[name] = true
		}
		for _, name := range overlay.Visited {
			visited[name] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("digraph automaton {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=circle];\n")

	if desc.Entry != nil {
		sb.WriteString(fmt.Sprintf("  %s [label=\"\", shape=point];\n", dotEntryID))
		sb.WriteString(fmt.Sprintf("  %s -> \"%s\";\n", dotEntryID, EscapeLabel(desc.Entry.To)))
	}

	for _, node := range desc.Nodes {
		attrs := []string{fmt.Sprintf("label=\"%s\"", EscapeLabel(node.Name))}
		if node.Final {
			attrs = append(attrs, "shape=doublecircle")
		}
		switch {
		case active[node.Name]:
			attrs = append(attrs, "style=filled", "fillcolor=\"#c8e6c9\"")
		case visited[node.Name]:
			attrs = append(attrs, "style=filled", "fillcolor=\"#e1f5fe\"")
		}
		sb.WriteString(fmt.Sprintf("  \"%s\" [%s];\n", EscapeLabel(node.Name), strings.Join(attrs, ", ")))
	}

	for _, e := range mergeEdges(desc.Edges) {
		sb.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\"];\n",
			EscapeLabel(e.From), EscapeLabel(e.To), EscapeLabel(e.Label)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// EscapeLabel escapes special characters in a quoted DOT string.
func EscapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\\", "\\\\")
	label = strings.ReplaceAll(label, "\"", "\\\"")
	return label
}
