package fasim

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/fasim/internal/runtime"
	"github.com/aretw0/fasim/pkg/adapters/memory"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/graph"
	"github.com/aretw0/fasim/pkg/ports"
)

// Version is the release of the engine and its CLI.
const Version = "0.4.0"

// Engine is the high-level entry point for the fasim library.
// It wraps the internal simulator and an automaton store behind a simplified API.
type Engine struct {
	sim    *runtime.Simulator
	store  ports.AutomatonStore
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

var _ ports.Simulator = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore sets the automaton store used by the name-based methods.
// Defaults to an in-memory store.
func WithStore(store ports.AutomatonStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	eng.sim = runtime.NewSimulator(runtime.WithLifecycleHooks(eng.hooks))
	return eng
}

// Store returns the automaton store.
func (e *Engine) Store() ports.AutomatonStore {
	return e.store
}

// Symbols splits a string into one symbol per character.
func Symbols(s string) []string {
	return runtime.Symbols(s)
}

// InitialConfiguration returns {initial} or domain.ErrNoInitialState.
func (e *Engine) InitialConfiguration(a *domain.Automaton) (domain.Configuration, error) {
	return e.sim.InitialConfiguration(a)
}

// Step consumes one symbol from cfg. A stuck result is a value, not an error.
func (e *Engine) Step(ctx context.Context, a *domain.Automaton, cfg domain.Configuration, symbol string) domain.StepResult {
	return e.sim.Step(ctx, a, cfg, symbol)
}

// IsAccepting reports whether cfg contains a final state.
func (e *Engine) IsAccepting(a *domain.Automaton, cfg domain.Configuration) bool {
	return e.sim.IsAccepting(a, cfg)
}

// Simulate decides whether a accepts symbols.
func (e *Engine) Simulate(ctx context.Context, a *domain.Automaton, symbols []string) (*domain.Run, error) {
	return e.sim.Simulate(ctx, a, symbols)
}

// SimulateWithTrace is Simulate plus the ordered record of every step.
func (e *Engine) SimulateWithTrace(ctx context.Context, a *domain.Automaton, symbols []string) (*domain.Run, error) {
	return e.sim.SimulateWithTrace(ctx, a, symbols)
}

// Export maps an automaton to a renderer-neutral description.
func (e *Engine) Export(a *domain.Automaton) graph.Description {
	return graph.Export(a)
}

// Register stores an automaton under name.
func (e *Engine) Register(ctx context.Context, name string, a *domain.Automaton) error {
	if err := e.store.SaveAutomaton(ctx, name, a); err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	e.logger.Debug("Automaton registered",
		"automaton", name,
		"states", a.Len(),
		"transitions", a.TransitionCount(),
	)
	return nil
}

// Automaton loads a stored automaton.
func (e *Engine) Automaton(ctx context.Context, name string) (*domain.Automaton, error) {
	return e.store.LoadAutomaton(ctx, name)
}

// Run loads the named automaton and simulates input, one symbol per character.
func (e *Engine) Run(ctx context.Context, name, input string, traced bool) (*domain.Automaton, *domain.Run, error) {
	a, err := e.store.LoadAutomaton(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	symbols := Symbols(input)
	var run *domain.Run
	if traced {
		run, err = e.sim.SimulateWithTrace(ctx, a, symbols)
	} else {
		run, err = e.sim.Simulate(ctx, a, symbols)
	}
	if err != nil {
		e.logger.Warn("Simulation failed", "automaton", name, "err", err)
		return nil, nil, err
	}

	e.logger.Debug("Simulation finished",
		"automaton", name,
		"verdict", run.Verdict,
		"consumed", run.Consumed,
		"stuck", run.Stuck,
	)
	return a, run, nil
}
