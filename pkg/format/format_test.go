package format_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nfaText = `#states
q0
q1
q2
#initial
q0
#accepting
q2
#alphabet
a
b
#transitions
q0:a>q0
q0:a>q1
q0:b>q0
q1:b>q2
`

func TestLoad_Valid(t *testing.T) {
	a, err := format.Unmarshal([]byte(nfaText))
	require.NoError(t, err)

	assert.Equal(t, 3, a.Len())
	initial, ok := a.Initial()
	require.True(t, ok)
	assert.Equal(t, "q0", initial.Name)
	assert.Equal(t, []string{"q2"}, a.Finals())
	assert.Equal(t, []string{"a", "b"}, a.Alphabet())
	assert.Equal(t, 4, a.TransitionCount())
	assert.False(t, a.IsDeterministic())
}

func TestSave_Canonical(t *testing.T) {
	a, err := format.Unmarshal([]byte(nfaText))
	require.NoError(t, err)

	out, err := format.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, nfaText, string(out))
}

func TestSave_IndependentOfInsertionOrder(t *testing.T) {
	build := func(states []string, transitions []domain.Transition) *domain.Automaton {
		a := domain.New()
		for _, s := range states {
			_, err := a.AddState(s, s == "q2")
			require.NoError(t, err)
		}
		require.NoError(t, a.SetInitial("q0"))
		for _, tr := range transitions {
			require.NoError(t, a.AddTransition(tr.From, tr.Symbol, tr.To))
		}
		return a
	}

	forward := []domain.Transition{
		{From: "q0", Symbol: "a", To: "q0"},
		{From: "q0", Symbol: "a", To: "q1"},
		{From: "q0", Symbol: "b", To: "q0"},
		{From: "q1", Symbol: "b", To: "q2"},
	}
	backward := []domain.Transition{forward[3], forward[1], forward[2], forward[0], forward[1]}

	first, err := format.Marshal(build([]string{"q0", "q1", "q2"}, forward))
	require.NoError(t, err)
	second, err := format.Marshal(build([]string{"q2", "q1", "q0"}, backward))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, nfaText, string(first))
}

func TestRoundTrip(t *testing.T) {
	a := domain.New()
	for _, name := range []string{"start", "even", "odd", "sink-1"} {
		_, err := a.AddState(name, name == "even")
		require.NoError(t, err)
	}
	require.NoError(t, a.SetInitial("start"))
	require.NoError(t, a.AddTransition("start", "0", "even"))
	require.NoError(t, a.AddTransition("start", "1", "odd"))
	require.NoError(t, a.AddTransition("even", "1", "odd"))
	require.NoError(t, a.AddTransition("odd", "1", "even"))
	require.NoError(t, a.AddTransition("odd", ":", "sink-1"))
	require.NoError(t, a.AddTransition("odd", ">", "sink-1"))
	require.NoError(t, a.AddTransition("odd", "a:b>c", "sink-1"))
	require.NoError(t, a.AddTransition("odd", "ß", "sink-1"))

	data, err := format.Marshal(a)
	require.NoError(t, err)

	loaded, err := format.Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, a.Equal(loaded), "round trip changed the automaton:\n%s", data)

	again, err := format.Marshal(loaded)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestSave_NoInitialState(t *testing.T) {
	a := domain.New()
	_, err := a.AddState("q0", false)
	require.NoError(t, err)

	_, err = format.Marshal(a)
	assert.ErrorIs(t, err, domain.ErrNoInitialState)
}

func TestLoad_Tolerance(t *testing.T) {
	text := "\r\n#states\r\n  q0 \r\n\r\nq1\r\n#initial\r\nq0\r\n#accepting\r\n#alphabet\r\n#transitions\r\nq0:a>q1\r\nq0:a>q1\r\n"
	a, err := format.Unmarshal([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())
	assert.Empty(t, a.Finals())
	assert.Equal(t, 1, a.TransitionCount(), "duplicate transition lines are one transition")
}

func TestLoad_AlphabetIsRecomputed(t *testing.T) {
	text := strings.Replace(nfaText, "#alphabet\na\nb\n", "#alphabet\nx\ny\nz\n", 1)
	a, err := format.Unmarshal([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, a.Alphabet())
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason string
		line   int
	}{
		{
			name:   "Empty File",
			text:   "",
			reason: "missing section #states",
		},
		{
			name:   "Content Before Sections",
			text:   "q0\n#states\n",
			reason: "content before the first section",
			line:   1,
		},
		{
			name:   "Missing Alphabet Section",
			text:   "#states\nq0\n#initial\nq0\n#accepting\n#transitions\n",
			reason: "missing section #alphabet",
		},
		{
			name:   "Truncated File",
			text:   "#states\nq0\n#initial\nq0\n",
			reason: "missing section #accepting",
		},
		{
			name:   "Duplicate Section",
			text:   "#states\nq0\n#states\n",
			reason: "duplicate or out-of-order section",
			line:   3,
		},
		{
			name:   "Unknown Marker",
			text:   "#states\n#final\n",
			reason: "unknown section marker",
			line:   2,
		},
		{
			name:   "Duplicate State",
			text:   "#states\nq0\nq0\n#initial\nq0\n#accepting\n#alphabet\n#transitions\n",
			reason: "duplicate state (first declared on line 2)",
			line:   3,
		},
		{
			name:   "Initial Not Declared",
			text:   "#states\nq0\n#initial\nq9\n#accepting\n#alphabet\n#transitions\n",
			reason: "initial state is not declared in #states",
			line:   4,
		},
		{
			name:   "Missing Initial Line",
			text:   "#states\nq0\n#initial\n#accepting\n#alphabet\n#transitions\n",
			reason: "missing initial state",
			line:   3,
		},
		{
			name:   "Two Initial Lines",
			text:   "#states\nq0\nq1\n#initial\nq0\nq1\n#accepting\n#alphabet\n#transitions\n",
			reason: "more than one initial state",
			line:   6,
		},
		{
			name:   "Accepting Not Declared",
			text:   "#states\nq0\n#initial\nq0\n#accepting\nq7\n#alphabet\n#transitions\n",
			reason: "accepting state is not declared in #states",
			line:   6,
		},
		{
			name:   "Transition Destination Not Declared",
			text:   "#states\nq0\n#initial\nq0\n#accepting\n#alphabet\n#transitions\nq0:a>q1\n",
			reason: `transition destination "q1" is not declared in #states`,
			line:   8,
		},
		{
			name:   "Transition Origin Not Declared",
			text:   "#states\nq0\n#initial\nq0\n#accepting\n#alphabet\n#transitions\nqx:a>q0\n",
			reason: `transition origin "qx" is not declared in #states`,
			line:   8,
		},
		{
			name:   "Transition Without Colon",
			text:   "#states\nq0\n#initial\nq0\n#accepting\n#alphabet\n#transitions\nq0a>q0\n",
			reason: "unparsable transition: missing ':'",
			line:   8,
		},
		{
			name:   "Transition Without Arrow",
			text:   "#states\nq0\n#initial\nq0\n#accepting\n#alphabet\n#transitions\nq0:aq0\n",
			reason: "unparsable transition: missing '>'",
			line:   8,
		},
		{
			name:   "Transition Empty Symbol",
			text:   "#states\nq0\n#initial\nq0\n#accepting\n#alphabet\n#transitions\nq0:>q0\n",
			reason: "unparsable transition: empty origin, symbol or destination",
			line:   8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := format.Unmarshal([]byte(tt.text))
			require.Error(t, err)
			assert.Nil(t, a, "no automaton may be returned on failure")
			assert.ErrorIs(t, err, format.ErrMalformed)

			var mErr *format.MalformedFileError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, tt.reason, mErr.Reason)
			assert.Equal(t, tt.line, mErr.Line)
		})
	}
}

func TestSaveFile_AddsExtension(t *testing.T) {
	a, err := format.Unmarshal([]byte(nfaText))
	require.NoError(t, err)

	dir := t.TempDir()
	written, err := format.SaveFile(filepath.Join(dir, "project"), a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "project.txt"), written)

	loaded, err := format.LoadFile(written)
	require.NoError(t, err)
	assert.True(t, a.Equal(loaded))

	_, err = format.LoadFile(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportYAML(t *testing.T) {
	doc := `
states: [q0, q1]
initial: q0
accepting: [q1]
transitions:
  - {from: q0, symbol: a, to: q1}
  - {from: q1, symbol: a, to: q1}
`
	a, err := format.ImportYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []domain.Transition{
		{From: "q0", Symbol: "a", To: "q1"},
		{From: "q1", Symbol: "a", To: "q1"},
	}, a.Transitions())

	assert.Equal(t, format.Document{
		States:      []string{"q0", "q1"},
		Initial:     "q0",
		Accepting:   []string{"q1"},
		Transitions: a.Transitions(),
	}, format.ToDocument(a))

	_, err = format.ImportYAML(strings.NewReader("states: [q0]\ninitial: q1\n"))
	assert.ErrorIs(t, err, format.ErrMalformed)

	_, err = format.ImportYAML(strings.NewReader("states: [q0]\nbogus: 1\n"))
	assert.ErrorIs(t, err, format.ErrMalformed)
}
