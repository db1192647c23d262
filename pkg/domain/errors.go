package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateState is returned when a state name is already taken.
var ErrDuplicateState = errors.New("duplicate state")

// ErrUnknownState is returned when an operation references a state that does not exist.
var ErrUnknownState = errors.New("unknown state")

// ErrNoInitialState is returned when a simulation (or a save) needs an initial state and none is set.
var ErrNoInitialState = errors.New("no initial state")

// ErrInvalidName is returned for state names or symbols the text format cannot represent.
var ErrInvalidName = errors.New("invalid name")

// ErrAutomatonNotFound is returned when a named automaton cannot be found in the store.
var ErrAutomatonNotFound = errors.New("automaton not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionStuck is returned when a symbol is fed to a session that already got stuck.
var ErrSessionStuck = errors.New("session is stuck")

// StateError describes a failed model operation on a named state or symbol.
type StateError struct {
	Op   string // e.g. "add_state", "set_initial"
	Name string
	Err  error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
