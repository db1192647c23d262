package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/fasim/pkg/domain"
)

// Store implements ports.AutomatonStore and ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	automata map[string]*domain.Automaton
	sessions map[string]*domain.Session
	mu       sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		automata: make(map[string]*domain.Automaton),
		sessions: make(map[string]*domain.Session),
	}
}

// SaveAutomaton stores a copy of the automaton.
func (s *Store) SaveAutomaton(ctx context.Context, name string, a *domain.Automaton) error {
	if err := domain.ValidateKey(name); err != nil {
		return err
	}
	// Copy to ensure isolation, similar to serialization
	copied := a.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.automata[name] = copied
	return nil
}

// LoadAutomaton retrieves a copy of the automaton.
func (s *Store) LoadAutomaton(ctx context.Context, name string) (*domain.Automaton, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.automata[name]
	if !ok {
		return nil, domain.ErrAutomatonNotFound
	}
	return a.Clone(), nil
}

// DeleteAutomaton removes the automaton.
func (s *Store) DeleteAutomaton(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.automata, name)
	return nil
}

// ListAutomata returns the stored names, sorted.
func (s *Store) ListAutomata(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.automata))
	for name := range s.automata {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Save persists the session in memory.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	if err := domain.ValidateKey(session.ID); err != nil {
		return err
	}
	copied := session.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copied
	return nil
}

// Load retrieves the session from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	// Copy on read so callers can't mutate the store through the pointer
	return session.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateKey(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}
