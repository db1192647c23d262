package domain

import (
	"slices"
	"time"
)

// Session is a persisted, caller-driven simulation: a cursor over an automaton that
// advances one symbol per Step call.
type Session struct {
	ID string `json:"id"`

	// Automaton is the store key of the simulated automaton.
	Automaton string `json:"automaton"`

	// Active holds the names of the current configuration, sorted.
	Active []string `json:"active"`

	// Consumed holds the symbols fed so far, including a refused one when Stuck.
	Consumed []string `json:"consumed"`

	// Stuck is terminal: further steps are refused.
	Stuck bool `json:"stuck"`

	// Accepting reports whether the current configuration intersects the finals.
	Accepting bool `json:"accepting"`

	History []Step `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session positioned on the given configuration.
func NewSession(id, automaton string, active []string, accepting bool) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Automaton: automaton,
		Active:    slices.Clone(active),
		Consumed:  []string{},
		Accepting: accepting,
		History:   []Step{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Verdict is the verdict the session would get if the input ended now.
func (s *Session) Verdict() Verdict {
	if s.Accepting && !s.Stuck {
		return VerdictAccepted
	}
	return VerdictRejected
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Active = slices.Clone(s.Active)
	c.Consumed = slices.Clone(s.Consumed)
	c.History = make([]Step, len(s.History))
	for i, st := range s.History {
		c.History[i] = Step{From: slices.Clone(st.From), Symbol: st.Symbol, To: slices.Clone(st.To)}
	}
	return &c
}
