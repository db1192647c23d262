package ports

import (
	"context"

	"github.com/aretw0/fasim/pkg/domain"
)

// AutomatonStore persists named automata.
// Names are validated with domain.ValidateKey before they reach the backend.
type AutomatonStore interface {
	// SaveAutomaton stores the automaton under name, replacing any previous one.
	SaveAutomaton(ctx context.Context, name string, a *domain.Automaton) error

	// LoadAutomaton retrieves a stored automaton.
	// Returns domain.ErrAutomatonNotFound if the name is unknown.
	LoadAutomaton(ctx context.Context, name string) (*domain.Automaton, error)

	// DeleteAutomaton removes the automaton. Deleting an unknown name is not an error.
	DeleteAutomaton(ctx context.Context, name string) error

	// ListAutomata returns the stored names in ascending order.
	ListAutomata(ctx context.Context) ([]string, error)
}

// SessionStore persists simulation sessions.
// This allows a run to be stepped across requests and processes.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, s *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes the session for a given ID.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
