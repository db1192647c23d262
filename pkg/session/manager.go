package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/fasim/internal/logging"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager runs step-by-step simulations whose state lives in a SessionStore.
// Concurrent calls on the same session are serialized; reference counting garbage
// collects unused locks.
type Manager struct {
	automata ports.AutomatonStore
	store    ports.SessionStore
	sim      ports.Simulator

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	newID   func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator replaces the random UUID session IDs.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager creates a session manager reading automata from automata, persisting
// sessions in store and stepping them with sim.
func NewManager(automata ports.AutomatonStore, store ports.SessionStore, sim ports.Simulator, opts ...Option) *Manager {
	m := &Manager{
		automata: automata,
		store:    store,
		sim:      sim,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(), // Default to no-op
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Start creates a session positioned on the initial configuration of the named automaton.
func (m *Manager) Start(ctx context.Context, automaton string) (*domain.Session, error) {
	a, err := m.automata.LoadAutomaton(ctx, automaton)
	if err != nil {
		return nil, err
	}
	cfg, err := m.sim.InitialConfiguration(a)
	if err != nil {
		return nil, fmt.Errorf("start session on %q: %w", automaton, err)
	}

	s := domain.NewSession(m.newID(), automaton, cfg.Names(a), m.sim.IsAccepting(a, cfg))
	err = m.WithLock(ctx, s.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, s)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	m.logger.Debug("Session started", "session_id", s.ID, "automaton", automaton)
	return s, nil
}

// Step feeds one symbol to the session.
// Stepping a stuck session fails with domain.ErrSessionStuck and leaves it unchanged.
func (m *Manager) Step(ctx context.Context, id, symbol string) (*domain.Session, error) {
	return m.Feed(ctx, id, []string{symbol})
}

// Feed consumes symbols in order under a single lock, stopping at the first stuck step.
func (m *Manager) Feed(ctx context.Context, id string, symbols []string) (*domain.Session, error) {
	for _, sym := range symbols {
		if err := domain.ValidateSymbol(sym); err != nil {
			return nil, err
		}
	}

	var s *domain.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if s.Stuck && len(symbols) > 0 {
			return domain.ErrSessionStuck
		}

		a, err := m.automata.LoadAutomaton(ctx, s.Automaton)
		if err != nil {
			return fmt.Errorf("session %s: %w", id, err)
		}
		cfg, err := domain.ConfigurationOf(a, s.Active...)
		if err != nil {
			return fmt.Errorf("session %s no longer matches automaton %q: %w", id, s.Automaton, err)
		}

		for _, sym := range symbols {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := m.sim.Step(ctx, a, cfg, sym)
			next := res.Next.Names(a)

			s.History = append(s.History, domain.Step{From: slices.Clone(s.Active), Symbol: sym, To: next})
			s.Consumed = append(s.Consumed, sym)
			s.Active = next
			s.Stuck = res.Stuck
			s.Accepting = !res.Stuck && m.sim.IsAccepting(a, res.Next)
			cfg = res.Next
			if res.Stuck {
				break
			}
		}

		s.UpdatedAt = time.Now().UTC()
		return m.store.Save(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves an existing session from the store.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, id)
		return err
	})
	return s, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, id); err != nil {
			return err
		}
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// A canceled request context must not keep the lock until TTL.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
