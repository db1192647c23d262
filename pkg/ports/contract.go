package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractAutomaton(t *testing.T) *domain.Automaton {
	t.Helper()
	a := domain.New()
	for _, name := range []string{"q0", "q1"} {
		_, err := a.AddState(name, name == "q1")
		require.NoError(t, err)
	}
	require.NoError(t, a.SetInitial("q0"))
	require.NoError(t, a.AddTransition("q0", "a", "q1"))
	require.NoError(t, a.AddTransition("q0", "a", "q0"))
	require.NoError(t, a.AddTransition("q1", "b", "q0"))
	return a
}

// RunAutomatonStoreContract runs a suite of tests to verify that an AutomatonStore
// implementation adheres to the defined interface contract.
func RunAutomatonStoreContract(t *testing.T, store AutomatonStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		a := contractAutomaton(t)
		require.NoError(t, store.SaveAutomaton(ctx, name, a))

		loaded, err := store.LoadAutomaton(ctx, name)
		require.NoError(t, err)
		assert.True(t, a.Equal(loaded), "loaded automaton differs from the saved one")

		// The store must not alias the caller's value.
		_, err = a.AddState("q9", false)
		require.NoError(t, err)
		again, err := store.LoadAutomaton(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, 2, again.Len())
	})

	t.Run("Overwrite", func(t *testing.T) {
		a := contractAutomaton(t)
		require.NoError(t, a.MarkFinal("q0", true))
		require.NoError(t, store.SaveAutomaton(ctx, name, a))

		loaded, err := store.LoadAutomaton(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, []string{"q0", "q1"}, loaded.Finals())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadAutomaton(ctx, "missing-"+name)
		assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		err := store.SaveAutomaton(ctx, "../escape", contractAutomaton(t))
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})

	t.Run("List", func(t *testing.T) {
		other := name + "-b"
		require.NoError(t, store.SaveAutomaton(ctx, other, contractAutomaton(t)))
		defer func() { _ = store.DeleteAutomaton(ctx, other) }()

		names, err := store.ListAutomata(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, name)
		assert.Contains(t, names, other)
		assert.IsNonDecreasing(t, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.DeleteAutomaton(ctx, name))

		_, err := store.LoadAutomaton(ctx, name)
		assert.ErrorIs(t, err, domain.ErrAutomatonNotFound, "Load after Delete should return ErrAutomatonNotFound")

		assert.NoError(t, store.DeleteAutomaton(ctx, name), "deleting twice is not an error")
	})
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(sessionID, "pair", []string{"q0"}, false)
		s.Consumed = append(s.Consumed, "a")
		s.Active = []string{"q0", "q1"}
		s.Accepting = true
		s.History = append(s.History, domain.Step{From: []string{"q0"}, Symbol: "a", To: []string{"q0", "q1"}})

		require.NoError(t, store.Save(ctx, s), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.ID, loaded.ID)
		assert.Equal(t, "pair", loaded.Automaton)
		assert.Equal(t, []string{"q0", "q1"}, loaded.Active)
		assert.Equal(t, []string{"a"}, loaded.Consumed)
		assert.True(t, loaded.Accepting)
		assert.Equal(t, s.History, loaded.History)
		assert.True(t, s.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, "pair", []string{"q0"}, false)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("Invalid ID", func(t *testing.T) {
		for _, id := range []string{"../escape", "my session", ""} {
			err := store.Save(ctx, domain.NewSession(id, "pair", []string{"q0"}, false))
			assert.ErrorIs(t, err, domain.ErrInvalidName, "Save(%q)", id)
			assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrInvalidName, "Delete(%q)", id)
		}

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids, "my session")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1, "pair", []string{"q0"}, false))
		_ = store.Save(ctx, domain.NewSession(id2, "pair", []string{"q0"}, false))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
