package domain

import (
	"cmp"
	"slices"
)

// StateID is the handle a state name is interned to when it is added.
// Handles are dense indexes into the automaton's state arena and stay stable for its lifetime.
type StateID int

// NoState is the zero handle returned alongside errors.
const NoState StateID = -1

// State is a single record of the state arena.
type State struct {
	ID    StateID `json:"-"`
	Name  string  `json:"name"`
	Final bool    `json:"final"`
}

// Transition is a single (origin, symbol, destination) triple of the transition relation.
type Transition struct {
	From   string `json:"from" yaml:"from"`
	Symbol string `json:"symbol" yaml:"symbol"`
	To     string `json:"to" yaml:"to"`
}

type transitionKey struct {
	origin StateID
	symbol string
}

// Option configures a new Automaton.
type Option func(*Automaton)

// WithFirstStateInitial makes the first state added to an automaton without an initial
// state its initial state. Without this option the initial state must be set explicitly.
func WithFirstStateInitial() Option {
	return func(a *Automaton) {
		a.firstInitial = true
	}
}

// Automaton is a finite automaton over string symbols.
// A deterministic automaton is the special case where every destination set has at most
// one element; the model does not distinguish the two.
//
// The zero value is not usable, call New.
type Automaton struct {
	states  []State
	index   map[string]StateID
	initial StateID
	delta   map[transitionKey][]StateID

	firstInitial bool
}

// New creates an empty automaton.
func New(opts ...Option) *Automaton {
	a := &Automaton{
		index:   make(map[string]StateID),
		initial: NoState,
		delta:   make(map[transitionKey][]StateID),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddState inserts a new state and returns its handle.
func (a *Automaton) AddState(name string, final bool) (StateID, error) {
	if err := ValidateStateName(name); err != nil {
		return NoState, &StateError{Op: "add_state", Name: name, Err: err}
	}
	if _, exists := a.index[name]; exists {
		return NoState, &StateError{Op: "add_state", Name: name, Err: ErrDuplicateState}
	}

	id := StateID(len(a.states))
	a.states = append(a.states, State{ID: id, Name: name, Final: final})
	a.index[name] = id

	if a.firstInitial && a.initial == NoState {
		a.initial = id
	}
	return id, nil
}

// SetInitial designates the initial state.
func (a *Automaton) SetInitial(name string) error {
	id, ok := a.index[name]
	if !ok {
		return &StateError{Op: "set_initial", Name: name, Err: ErrUnknownState}
	}
	a.initial = id
	return nil
}

// MarkFinal sets or clears the final flag of a state.
func (a *Automaton) MarkFinal(name string, value bool) error {
	id, ok := a.index[name]
	if !ok {
		return &StateError{Op: "mark_final", Name: name, Err: ErrUnknownState}
	}
	a.states[id].Final = value
	return nil
}

// AddTransition adds destination to the destination set of (origin, symbol).
// Adding an existing triple is a no-op.
func (a *Automaton) AddTransition(origin, symbol, destination string) error {
	from, ok := a.index[origin]
	if !ok {
		return &StateError{Op: "add_transition", Name: origin, Err: ErrUnknownState}
	}
	to, ok := a.index[destination]
	if !ok {
		return &StateError{Op: "add_transition", Name: destination, Err: ErrUnknownState}
	}
	if err := ValidateSymbol(symbol); err != nil {
		return &StateError{Op: "add_transition", Name: symbol, Err: err}
	}

	key := transitionKey{origin: from, symbol: symbol}
	dests := a.delta[key]
	pos, found := slices.BinarySearch(dests, to)
	if found {
		return nil
	}
	a.delta[key] = slices.Insert(dests, pos, to)
	return nil
}

// Alphabet returns the sorted set of symbols used by any transition.
func (a *Automaton) Alphabet() []string {
	seen := make(map[string]struct{})
	for key := range a.delta {
		seen[key.symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

// Len returns the number of states.
func (a *Automaton) Len() int {
	return len(a.states)
}

// Lookup resolves a state name to its handle.
func (a *Automaton) Lookup(name string) (StateID, bool) {
	id, ok := a.index[name]
	return id, ok
}

// State returns the record for a handle.
func (a *Automaton) State(id StateID) (State, bool) {
	if id < 0 || int(id) >= len(a.states) {
		return State{}, false
	}
	return a.states[id], true
}

// Name returns the name of a handle, or "" for an unknown handle.
func (a *Automaton) Name(id StateID) string {
	s, _ := a.State(id)
	return s.Name
}

// IsFinal reports whether the handle names a final state.
func (a *Automaton) IsFinal(id StateID) bool {
	s, ok := a.State(id)
	return ok && s.Final
}

// States returns all states sorted by name.
func (a *Automaton) States() []State {
	out := slices.Clone(a.states)
	slices.SortFunc(out, func(x, y State) int { return cmp.Compare(x.Name, y.Name) })
	return out
}

// Initial returns the initial state, if one is set.
func (a *Automaton) Initial() (State, bool) {
	if a.initial == NoState {
		return State{}, false
	}
	return a.states[a.initial], true
}

// InitialID returns the initial handle or NoState.
func (a *Automaton) InitialID() StateID {
	return a.initial
}

// Finals returns the sorted names of the final states.
func (a *Automaton) Finals() []string {
	var names []string
	for _, s := range a.states {
		if s.Final {
			names = append(names, s.Name)
		}
	}
	slices.Sort(names)
	return names
}

// Destinations returns the sorted destination handles of (origin, symbol).
// The returned slice is owned by the automaton and must not be modified.
func (a *Automaton) Destinations(origin StateID, symbol string) []StateID {
	return a.delta[transitionKey{origin: origin, symbol: symbol}]
}

// Transitions returns every triple sorted by (from, symbol, to).
func (a *Automaton) Transitions() []Transition {
	out := make([]Transition, 0, a.TransitionCount())
	for key, dests := range a.delta {
		for _, d := range dests {
			out = append(out, Transition{
				From:   a.states[key.origin].Name,
				Symbol: key.symbol,
				To:     a.states[d].Name,
			})
		}
	}
	slices.SortFunc(out, compareTransitions)
	return out
}

// TransitionCount returns the number of triples in the relation.
func (a *Automaton) TransitionCount() int {
	n := 0
	for _, dests := range a.delta {
		n += len(dests)
	}
	return n
}

// IsDeterministic reports whether no (origin, symbol) pair has more than one destination.
func (a *Automaton) IsDeterministic() bool {
	for _, dests := range a.delta {
		if len(dests) > 1 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Handles are preserved.
func (a *Automaton) Clone() *Automaton {
	c := &Automaton{
		states:       slices.Clone(a.states),
		index:        make(map[string]StateID, len(a.index)),
		initial:      a.initial,
		delta:        make(map[transitionKey][]StateID, len(a.delta)),
		firstInitial: a.firstInitial,
	}
	for name, id := range a.index {
		c.index[name] = id
	}
	for key, dests := range a.delta {
		c.delta[key] = slices.Clone(dests)
	}
	return c
}

// Equal reports whether two automata are isomorphic by state name: same states, same
// finals, same initial state and the same transition relation. Handles are ignored.
func (a *Automaton) Equal(b *Automaton) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Len() != b.Len() || a.TransitionCount() != b.TransitionCount() {
		return false
	}
	for _, s := range a.states {
		id, ok := b.index[s.Name]
		if !ok || b.states[id].Final != s.Final {
			return false
		}
	}
	ai, aok := a.Initial()
	bi, bok := b.Initial()
	if aok != bok || ai.Name != bi.Name {
		return false
	}
	return slices.Equal(a.Transitions(), b.Transitions())
}

func compareTransitions(x, y Transition) int {
	if c := cmp.Compare(x.From, y.From); c != 0 {
		return c
	}
	if c := cmp.Compare(x.Symbol, y.Symbol); c != 0 {
		return c
	}
	return cmp.Compare(x.To, y.To)
}
