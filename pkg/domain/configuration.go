package domain

import (
	"iter"
	"slices"
)

// Configuration is the set of states considered active during a simulation.
// It is an immutable snapshot: every step produces a new value, so a driver may stop
// between steps without leaving anything half updated.
type Configuration struct {
	ids []StateID // sorted, unique
}

// NewConfiguration builds a configuration from handles. Duplicates are dropped.
func NewConfiguration(ids ...StateID) Configuration {
	c := slices.Clone(ids)
	slices.Sort(c)
	return Configuration{ids: slices.Compact(c)}
}

// ConfigurationOf resolves state names against an automaton.
func ConfigurationOf(a *Automaton, names ...string) (Configuration, error) {
	ids := make([]StateID, 0, len(names))
	for _, name := range names {
		id, ok := a.Lookup(name)
		if !ok {
			return Configuration{}, &StateError{Op: "configuration", Name: name, Err: ErrUnknownState}
		}
		ids = append(ids, id)
	}
	return NewConfiguration(ids...), nil
}

// IDs returns a copy of the sorted handles.
func (c Configuration) IDs() []StateID {
	return slices.Clone(c.ids)
}

// All iterates the handles in ascending order.
func (c Configuration) All() iter.Seq[StateID] {
	return slices.Values(c.ids)
}

// Len returns the number of active states.
func (c Configuration) Len() int {
	return len(c.ids)
}

// IsEmpty reports whether no state is active.
func (c Configuration) IsEmpty() bool {
	return len(c.ids) == 0
}

// Contains reports whether a handle is active.
func (c Configuration) Contains(id StateID) bool {
	_, found := slices.BinarySearch(c.ids, id)
	return found
}

// Equal reports set equality.
func (c Configuration) Equal(o Configuration) bool {
	return slices.Equal(c.ids, o.ids)
}

// Names returns the active state names sorted by name.
func (c Configuration) Names(a *Automaton) []string {
	names := make([]string, 0, len(c.ids))
	for _, id := range c.ids {
		names = append(names, a.Name(id))
	}
	slices.Sort(names)
	return names
}
