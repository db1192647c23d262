package session_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/fasim"
	"github.com/aretw0/fasim/pkg/adapters/memory"
	"github.com/aretw0/fasim/pkg/adapters/redis"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
	"github.com/aretw0/fasim/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pairText = `#states
q0
q1
#initial
q0
#accepting
q1
#alphabet
a
#transitions
q0:a>q1
`

const countingText = `#states
q0
q1
#initial
q0
#accepting
q0
#alphabet
a
#transitions
q0:a>q1
q1:a>q0
`

func setup(t *testing.T, opts ...session.Option) (*session.Manager, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for name, text := range map[string]string{"pair": pairText, "even-a": countingText} {
		a, err := format.Unmarshal([]byte(text))
		require.NoError(t, err)
		require.NoError(t, store.SaveAutomaton(ctx, name, a))
	}
	return session.NewManager(store, store, fasim.New(), opts...), store
}

func TestManager_StartAndStep(t *testing.T) {
	mgr, _ := setup(t, session.WithIDGenerator(func() string { return "fixed" }))
	ctx := context.Background()

	s, err := mgr.Start(ctx, "pair")
	require.NoError(t, err)
	assert.Equal(t, "fixed", s.ID)
	assert.Equal(t, []string{"q0"}, s.Active)
	assert.Equal(t, domain.VerdictRejected, s.Verdict())

	s, err = mgr.Step(ctx, s.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, s.Active)
	assert.Equal(t, domain.VerdictAccepted, s.Verdict())
	assert.Equal(t, []domain.Step{{From: []string{"q0"}, Symbol: "a", To: []string{"q1"}}}, s.History)

	// q1 has no transition on "a": the session gets stuck.
	s, err = mgr.Step(ctx, s.ID, "a")
	require.NoError(t, err)
	assert.True(t, s.Stuck)
	assert.Empty(t, s.Active)
	assert.Equal(t, []string{"a", "a"}, s.Consumed)
	assert.Equal(t, domain.VerdictRejected, s.Verdict())

	_, err = mgr.Step(ctx, s.ID, "a")
	assert.ErrorIs(t, err, domain.ErrSessionStuck)

	stored, err := mgr.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 2, "a refused step must not be persisted")
}

func TestManager_StartErrors(t *testing.T) {
	mgr, store := setup(t)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)

	noInitial := domain.New()
	_, err = noInitial.AddState("q0", false)
	require.NoError(t, err)
	require.NoError(t, store.SaveAutomaton(ctx, "headless", noInitial))

	_, err = mgr.Start(ctx, "headless")
	assert.ErrorIs(t, err, domain.ErrNoInitialState)
}

func TestManager_FeedAgreesWithSimulate(t *testing.T) {
	mgr, store := setup(t)
	ctx := context.Background()
	eng := fasim.New()

	a, err := store.LoadAutomaton(ctx, "even-a")
	require.NoError(t, err)

	for _, word := range []string{"", "a", "aa", "aaa", "aab", "ba"} {
		s, err := mgr.Start(ctx, "even-a")
		require.NoError(t, err)
		s, err = mgr.Feed(ctx, s.ID, fasim.Symbols(word))
		require.NoError(t, err)

		run, err := eng.SimulateWithTrace(ctx, a, fasim.Symbols(word))
		require.NoError(t, err)

		assert.Equal(t, run.Verdict, s.Verdict(), word)
		assert.Equal(t, run.Stuck, s.Stuck, word)
		assert.Equal(t, run.NamedTrace(a), s.History, word)
	}
}

func TestManager_InvalidSymbol(t *testing.T) {
	mgr, _ := setup(t)
	ctx := context.Background()
	s, err := mgr.Start(ctx, "pair")
	require.NoError(t, err)

	_, err = mgr.Step(ctx, s.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestManager_DeleteAndList(t *testing.T) {
	var n int
	mgr, _ := setup(t, session.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}))
	ctx := context.Background()

	for range 3 {
		_, err := mgr.Start(ctx, "pair")
		require.NoError(t, err)
	}

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)

	require.NoError(t, mgr.Delete(ctx, "s2"))
	assert.ErrorIs(t, mgr.Delete(ctx, "s2"), domain.ErrSessionNotFound)

	_, err = mgr.Get(ctx, "s2")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ConcurrentSteps(t *testing.T) {
	mgr, _ := setup(t)
	ctx := context.Background()

	s, err := mgr.Start(ctx, "even-a")
	require.NoError(t, err)

	// Read-Modify-Write without locking would lose updates.
	const steps = 20
	var wg sync.WaitGroup
	for range steps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Step(ctx, s.ID, "a")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := mgr.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, final.Consumed, steps)
	assert.Equal(t, domain.VerdictAccepted, final.Verdict(), "an even number of a's is accepted")
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := redis.NewLocker(client, "fasim:")
	mgr, _ := setup(t,
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
		session.WithIDGenerator(func() string { return "locked" }),
	)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "pair")
	require.NoError(t, err)

	// Another replica holds the lock: the step waits until ctx gives up.
	unlock, err := locker.Lock(ctx, "locked", 5*time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = mgr.Step(short, "locked", "a")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "distributed lock"))

	require.NoError(t, unlock(ctx))
	s, err := mgr.Step(ctx, "locked", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, s.Active)
	assert.False(t, mr.Exists("fasim:lock:locked"), "lock released after the step")
}
