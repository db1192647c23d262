package runtime

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/aretw0/fasim/pkg/domain"
)

// InitialConfiguration returns the singleton configuration holding the initial state.
func InitialConfiguration(a *domain.Automaton) (domain.Configuration, error) {
	id := a.InitialID()
	if id == domain.NoState {
		return domain.Configuration{}, domain.ErrNoInitialState
	}
	return domain.NewConfiguration(id), nil
}

// Step computes the union of the destinations of every active state on symbol.
// An empty union is reported as Stuck.
func Step(a *domain.Automaton, cfg domain.Configuration, symbol string) domain.StepResult {
	var next []domain.StateID
	for id := range cfg.All() {
		next = append(next, a.Destinations(id, symbol)...)
	}
	if len(next) == 0 {
		return domain.StepResult{Stuck: true}
	}
	return domain.StepResult{Next: domain.NewConfiguration(next...)}
}

// IsAccepting reports whether cfg intersects the final states.
func IsAccepting(a *domain.Automaton, cfg domain.Configuration) bool {
	for id := range cfg.All() {
		if a.IsFinal(id) {
			return true
		}
	}
	return false
}

// Symbols splits s into one symbol per rune.
// Invalid UTF-8 bytes become the replacement character, as with a range loop.
func Symbols(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Simulator runs the fold over Step. It is stateless apart from its hooks, so one value
// can be shared by any number of callers.
type Simulator struct {
	hooks domain.LifecycleHooks
	now   func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulator) {
		s.hooks = hooks
	}
}

// NewSimulator creates a simulator.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitialConfiguration delegates to the package function.
func (s *Simulator) InitialConfiguration(a *domain.Automaton) (domain.Configuration, error) {
	return InitialConfiguration(a)
}

// IsAccepting delegates to the package function.
func (s *Simulator) IsAccepting(a *domain.Automaton, cfg domain.Configuration) bool {
	return IsAccepting(a, cfg)
}

// Step consumes one symbol and notifies OnStep.
func (s *Simulator) Step(ctx context.Context, a *domain.Automaton, cfg domain.Configuration, symbol string) domain.StepResult {
	res := Step(a, cfg, symbol)
	if s.hooks.OnStep != nil {
		s.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: s.now(), Type: domain.EventStep},
			From:      cfg.Names(a),
			Symbol:    symbol,
			To:        res.Next.Names(a),
			Stuck:     res.Stuck,
		})
	}
	return res
}

// Simulate folds Step over symbols from the initial configuration.
func (s *Simulator) Simulate(ctx context.Context, a *domain.Automaton, symbols []string) (*domain.Run, error) {
	return s.fold(ctx, a, symbols, false)
}

// SimulateWithTrace is Simulate plus one TraceRecord per attempted step.
// A stuck step is recorded with an empty destination and ends the trace.
func (s *Simulator) SimulateWithTrace(ctx context.Context, a *domain.Automaton, symbols []string) (*domain.Run, error) {
	return s.fold(ctx, a, symbols, true)
}

// fold is the single definition of whole-input evaluation. Cancellation is checked
// between steps only.
func (s *Simulator) fold(ctx context.Context, a *domain.Automaton, symbols []string, traced bool) (*domain.Run, error) {
	cfg, err := InitialConfiguration(a)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{StuckAt: -1}
	if traced {
		run.Trace = make([]domain.TraceRecord, 0, len(symbols))
	}

	for i, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := s.Step(ctx, a, cfg, symbol)
		if traced {
			run.Trace = append(run.Trace, domain.TraceRecord{From: cfg, Symbol: symbol, To: res.Next})
		}
		cfg = res.Next
		if res.Stuck {
			run.Stuck = true
			run.StuckAt = i
			break
		}
		run.Consumed++
	}

	run.Final = cfg
	run.Verdict = domain.VerdictRejected
	if !run.Stuck && IsAccepting(a, cfg) {
		run.Verdict = domain.VerdictAccepted
	}

	if s.hooks.OnVerdict != nil {
		s.hooks.OnVerdict(ctx, &domain.VerdictEvent{
			EventBase: domain.EventBase{Timestamp: s.now(), Type: domain.EventVerdict},
			Verdict:   run.Verdict,
			Stuck:     run.Stuck,
			Consumed:  run.Consumed,
			Length:    len(symbols),
		})
	}
	return run, nil
}
