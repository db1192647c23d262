package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/fasim"
	"github.com/aretw0/fasim/pkg/adapters/memory"
	"github.com/aretw0/fasim/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	store := memory.NewStore()
	mgr := NewManager(store, store, fasim.New())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.WithLock(ctx, sid, func(ctx context.Context) error {
			return store.Save(ctx, domain.NewSession(sid, "x", nil, false))
		})
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
