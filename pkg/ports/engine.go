package ports

import (
	"context"

	"github.com/aretw0/fasim/pkg/domain"
)

// Simulator is the stepping surface adapters drive.
// The root fasim.Engine implements it.
type Simulator interface {
	// InitialConfiguration returns {initial} or domain.ErrNoInitialState.
	InitialConfiguration(a *domain.Automaton) (domain.Configuration, error)

	// Step computes the successor configuration for one symbol.
	Step(ctx context.Context, a *domain.Automaton, cfg domain.Configuration, symbol string) domain.StepResult

	// IsAccepting reports whether cfg contains a final state.
	IsAccepting(a *domain.Automaton, cfg domain.Configuration) bool

	// SimulateWithTrace runs a whole input and records every step.
	SimulateWithTrace(ctx context.Context, a *domain.Automaton, symbols []string) (*domain.Run, error)
}
