// Package graph maps an automaton to a renderer-neutral node/edge description.
//
// Layout and drawing are left to whoever consumes the Description.
package graph

import (
	"github.com/aretw0/fasim/pkg/domain"
)

// Node is a state as seen by a renderer.
type Node struct {
	Name    string `json:"name"`
	Final   bool   `json:"final"`
	Initial bool   `json:"initial"`
}

// Edge is one transition. From is empty for the synthetic entry edge.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Description is the whole graph handed to a renderer.
type Description struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// Entry is a dangling edge into the initial state, nil when none is set.
	Entry *Edge `json:"entry,omitempty"`
}

// Export builds the description of an automaton. Nodes are sorted by name and edges by
// (from, label, to), one edge per transition triple.
func Export(a *domain.Automaton) Description {
	desc := Description{
		Nodes: make([]Node, 0, a.Len()),
		Edges: make([]Edge, 0, a.TransitionCount()),
	}

	initial, hasInitial := a.Initial()
	for _, s := range a.States() {
		desc.Nodes = append(desc.Nodes, Node{
			Name:    s.Name,
			Final:   s.Final,
			Initial: hasInitial && s.Name == initial.Name,
		})
	}

	for _, t := range a.Transitions() {
		desc.Edges = append(desc.Edges, Edge{From: t.From, To: t.To, Label: t.Symbol})
	}

	if hasInitial {
		desc.Entry = &Edge{To: initial.Name}
	}
	return desc
}
