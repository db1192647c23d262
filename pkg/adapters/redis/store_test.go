package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/fasim/pkg/adapters/redis"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_AutomatonContract(t *testing.T) {
	_, client := newClient(t)
	ports.RunAutomatonStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_SessionContract(t *testing.T) {
	_, client := newClient(t)
	ports.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_AutomatonIsText(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	a := domain.New(domain.WithFirstStateInitial())
	_, err := a.AddState("q0", true)
	require.NoError(t, err)
	require.NoError(t, a.AddTransition("q0", "a", "q0"))
	require.NoError(t, store.SaveAutomaton(ctx, "loop", a))

	raw, err := mr.Get("fasim:automaton:loop")
	require.NoError(t, err)
	assert.Equal(t, "#states\nq0\n#initial\nq0\n#accepting\nq0\n#alphabet\na\n#transitions\nq0:a>q0\n", raw)

	members, err := mr.Members("fasim:automata")
	require.NoError(t, err)
	assert.Equal(t, []string{"loop"}, members)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	// Create store with 1s TTL
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	// 1. Save
	err := store.Save(ctx, domain.NewSession(sessionID, "loop", []string{"q0"}, true))
	assert.NoError(t, err)

	// 2. Verify List (immediately)
	sessions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// 3. Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Load (should fail)
	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// 5. The index score is computed from time.Now(), so lazy cleanup needs real time to pass.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-session"

	err := store.Save(ctx, domain.NewSession(sessionID, "loop", []string{"q0"}, false))
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:session:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:session:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, sessionID)
}
