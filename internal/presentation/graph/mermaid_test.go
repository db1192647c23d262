package graph_test

import (
	"strings"
	"testing"

	presentation "github.com/aretw0/fasim/internal/presentation/graph"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDescription(t *testing.T) graph.Description {
	t.Helper()
	a := domain.New()
	for _, name := range []string{"q0", "q1", `say "hi"`} {
		_, err := a.AddState(name, name == "q1")
		require.NoError(t, err)
	}
	require.NoError(t, a.SetInitial("q0"))
	require.NoError(t, a.AddTransition("q0", "a", "q1"))
	require.NoError(t, a.AddTransition("q0", "b", "q1"))
	require.NoError(t, a.AddTransition("q1", "a", `say "hi"`))
	return graph.Export(a)
}

func TestGenerateMermaid(t *testing.T) {
	desc := sampleDescription(t)

	tests := []struct {
		name        string
		overlay     *presentation.Overlay
		contains    []string
		notContains []string
	}{
		{
			name: "Shapes And Entry",
			contains: []string{
				"graph LR\n",
				"__entry__ --> s0",
				`s0(("q0"))`,
				`s1((("q1")))`,
				"class __entry__ entry;",
			},
			notContains: []string{"Overlay Styles"},
		},
		{
			name: "Merged Labels",
			contains: []string{
				`s0 -- "a, b" --> s1`,
			},
		},
		{
			name: "Quote Escaping",
			contains: []string{
				`s2(("say #quot;hi#quot;"))`,
				`s1 -- "a" --> s2`,
			},
		},
		{
			name:    "Overlay",
			overlay: &presentation.Overlay{Active: []string{"q1"}, Visited: []string{"q0", "q0", "ghost"}},
			contains: []string{
				"classDef active",
				"class s1 active;",
				"class s0 visited;",
			},
			notContains: []string{"ghost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := presentation.GenerateMermaid(desc, tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_NoInitialState(t *testing.T) {
	a := domain.New()
	_, err := a.AddState("lonely", false)
	require.NoError(t, err)

	out := presentation.GenerateMermaid(graph.Export(a), nil)
	assert.NotContains(t, out, "__entry__")
	assert.Contains(t, out, `s0(("lonely"))`)
}

func TestGenerateDOT(t *testing.T) {
	desc := sampleDescription(t)

	out := presentation.GenerateDOT(desc, &presentation.Overlay{Active: []string{"q0"}})

	assert.True(t, strings.HasPrefix(out, "digraph automaton {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `"#entry" [label="", shape=point];`)
	assert.Contains(t, out, `"#entry" -> "q0";`)
	assert.Contains(t, out, `"q0" [label="q0", style=filled, fillcolor="#c8e6c9"];`)
	assert.Contains(t, out, `"q1" [label="q1", shape=doublecircle];`)
	assert.Contains(t, out, `"q0" -> "q1" [label="a, b"];`)
	assert.Contains(t, out, `"say \"hi\"" [label="say \"hi\""];`)
}

func TestEscapeLabel(t *testing.T) {
	assert.Equal(t, `a\\b\"c`, presentation.EscapeLabel(`a\b"c`))
}

func TestEntryMarker_StateNamedLikeMarker(t *testing.T) {
	a := domain.New()
	for _, name := range []string{"q0", "__entry__"} {
		_, err := a.AddState(name, name == "__entry__")
		require.NoError(t, err)
	}
	require.NoError(t, a.SetInitial("q0"))
	require.NoError(t, a.AddTransition("q0", "a", "__entry__"))
	desc := graph.Export(a)

	dot := presentation.GenerateDOT(desc, nil)
	assert.Contains(t, dot, `"#entry" -> "q0";`)
	assert.Contains(t, dot, `"__entry__" [label="__entry__", shape=doublecircle];`)
	assert.Contains(t, dot, `"q0" -> "__entry__" [label="a"];`)
	assert.Equal(t, 1, strings.Count(dot, "shape=point"))

	// Mermaid node IDs are positional, so the marker and the state stay distinct.
	mermaid := presentation.GenerateMermaid(desc, nil)
	assert.Contains(t, mermaid, "__entry__ --> s1")
	assert.Contains(t, mermaid, `s0((("__entry__")))`)
	assert.Contains(t, mermaid, `s1 -- "a" --> s0`)
}
