package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPair(t *testing.T) *domain.Automaton {
	t.Helper()
	a := domain.New()
	_, err := a.AddState("q0", false)
	require.NoError(t, err)
	_, err = a.AddState("q1", true)
	require.NoError(t, err)
	require.NoError(t, a.SetInitial("q0"))
	require.NoError(t, a.AddTransition("q0", "a", "q1"))
	return a
}

func TestAutomaton_AddState(t *testing.T) {
	a := domain.New()

	id, err := a.AddState("q0", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StateID(0), id)

	_, err = a.AddState("q0", true)
	assert.ErrorIs(t, err, domain.ErrDuplicateState)

	var stateErr *domain.StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "add_state", stateErr.Op)
	assert.Equal(t, "q0", stateErr.Name)

	assert.Equal(t, 1, a.Len())
	s, ok := a.State(id)
	require.True(t, ok)
	assert.False(t, s.Final, "failed duplicate insert must not touch the existing state")
}

func TestAutomaton_InvalidNames(t *testing.T) {
	a := domain.New()
	for _, name := range []string{"", " q0", "q0 ", "a:b", "a>b", "#states", "#x", "two\nlines"} {
		_, err := a.AddState(name, false)
		assert.ErrorIs(t, err, domain.ErrInvalidName, "name %q", name)
	}
	assert.Equal(t, 0, a.Len())

	_, err := a.AddState("q0", false)
	require.NoError(t, err)
	for _, sym := range []string{"", "#alphabet", "a\nb"} {
		err := a.AddTransition("q0", sym, "q0")
		assert.ErrorIs(t, err, domain.ErrInvalidName, "symbol %q", sym)
	}
	assert.Equal(t, 0, a.TransitionCount())

	// ':' and '>' are fine inside symbols.
	require.NoError(t, a.AddTransition("q0", ":", "q0"))
	require.NoError(t, a.AddTransition("q0", ">", "q0"))
	assert.Equal(t, []string{":", ">"}, a.Alphabet())
}

func TestAutomaton_FirstStateInitial(t *testing.T) {
	t.Run("Explicit by default", func(t *testing.T) {
		a := domain.New()
		_, err := a.AddState("q0", false)
		require.NoError(t, err)
		_, ok := a.Initial()
		assert.False(t, ok)
	})

	t.Run("Adopted with option", func(t *testing.T) {
		a := domain.New(domain.WithFirstStateInitial())
		_, err := a.AddState("q0", false)
		require.NoError(t, err)
		_, err = a.AddState("q1", false)
		require.NoError(t, err)

		initial, ok := a.Initial()
		require.True(t, ok)
		assert.Equal(t, "q0", initial.Name)
	})
}

func TestAutomaton_SetInitialAndMarkFinal(t *testing.T) {
	a := buildPair(t)

	assert.ErrorIs(t, a.SetInitial("nope"), domain.ErrUnknownState)
	initial, _ := a.Initial()
	assert.Equal(t, "q0", initial.Name, "failed SetInitial keeps the previous initial state")

	assert.ErrorIs(t, a.MarkFinal("nope", true), domain.ErrUnknownState)
	require.NoError(t, a.MarkFinal("q0", true))
	assert.Equal(t, []string{"q0", "q1"}, a.Finals())
	require.NoError(t, a.MarkFinal("q1", false))
	assert.Equal(t, []string{"q0"}, a.Finals())
}

func TestAutomaton_AddTransition_UnknownEndpoint(t *testing.T) {
	a := buildPair(t)
	states, transitions := a.Len(), a.TransitionCount()

	assert.ErrorIs(t, a.AddTransition("zz", "a", "q1"), domain.ErrUnknownState)
	assert.ErrorIs(t, a.AddTransition("q0", "a", "zz"), domain.ErrUnknownState)

	assert.Equal(t, states, a.Len())
	assert.Equal(t, transitions, a.TransitionCount())
}

func TestAutomaton_Nondeterminism(t *testing.T) {
	a := buildPair(t)
	_, err := a.AddState("q2", false)
	require.NoError(t, err)

	require.NoError(t, a.AddTransition("q0", "a", "q2"))
	require.NoError(t, a.AddTransition("q0", "a", "q2")) // idempotent

	q0, _ := a.Lookup("q0")
	q1, _ := a.Lookup("q1")
	q2, _ := a.Lookup("q2")
	assert.Equal(t, []domain.StateID{q1, q2}, a.Destinations(q0, "a"))
	assert.Equal(t, 2, a.TransitionCount())
	assert.False(t, a.IsDeterministic())
	assert.Empty(t, a.Destinations(q0, "b"))
}

func TestAutomaton_AlphabetAndTransitions(t *testing.T) {
	a := buildPair(t)
	require.NoError(t, a.AddTransition("q1", "b", "q0"))
	require.NoError(t, a.AddTransition("q0", "b", "q0"))

	assert.Equal(t, []string{"a", "b"}, a.Alphabet())
	assert.Equal(t, []domain.Transition{
		{From: "q0", Symbol: "a", To: "q1"},
		{From: "q0", Symbol: "b", To: "q0"},
		{From: "q1", Symbol: "b", To: "q0"},
	}, a.Transitions())
	assert.True(t, a.IsDeterministic())
}

func TestAutomaton_CloneAndEqual(t *testing.T) {
	a := buildPair(t)
	c := a.Clone()
	assert.True(t, a.Equal(c))

	require.NoError(t, c.AddTransition("q1", "a", "q1"))
	assert.False(t, a.Equal(c), "clone must not share the transition table")
	assert.Equal(t, 1, a.TransitionCount())

	// Same logical automaton built in a different order.
	b := domain.New()
	_, _ = b.AddState("q1", true)
	_, _ = b.AddState("q0", false)
	require.NoError(t, b.AddTransition("q0", "a", "q1"))
	require.NoError(t, b.SetInitial("q0"))
	assert.True(t, a.Equal(b))

	require.NoError(t, b.SetInitial("q1"))
	assert.False(t, a.Equal(b))
}

func TestConfiguration(t *testing.T) {
	a := buildPair(t)

	c, err := domain.ConfigurationOf(a, "q1", "q0", "q1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"q0", "q1"}, c.Names(a))

	q1, _ := a.Lookup("q1")
	assert.True(t, c.Contains(q1))
	assert.True(t, c.Equal(domain.NewConfiguration(1, 0)))

	_, err = domain.ConfigurationOf(a, "zz")
	assert.ErrorIs(t, err, domain.ErrUnknownState)

	assert.True(t, domain.NewConfiguration().IsEmpty())
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, domain.ValidateKey("even-zeros_1.v2"))
	for _, key := range []string{"", "../etc", ".hidden", "a/b", "a b"} {
		assert.ErrorIs(t, domain.ValidateKey(key), domain.ErrInvalidName, "key %q", key)
	}
}
