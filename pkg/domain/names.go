package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Section markers of the persisted text format.
// They live here because symbols must never collide with them.
const (
	MarkerStates      = "#states"
	MarkerInitial     = "#initial"
	MarkerAccepting   = "#accepting"
	MarkerAlphabet    = "#alphabet"
	MarkerTransitions = "#transitions"
)

// IsMarker reports whether line is exactly one of the section markers.
func IsMarker(line string) bool {
	switch line {
	case MarkerStates, MarkerInitial, MarkerAccepting, MarkerAlphabet, MarkerTransitions:
		return true
	}
	return false
}

// ValidateStateName checks that a state name survives a save/load round trip.
// Names are non-empty, carry no surrounding whitespace, contain no line break, ':' or '>'
// and do not start with '#'.
func ValidateStateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty state name", ErrInvalidName)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: state name %q has surrounding whitespace", ErrInvalidName, name)
	case strings.ContainsAny(name, "\r\n"):
		return fmt.Errorf("%w: state name %q contains a line break", ErrInvalidName, name)
	case strings.ContainsAny(name, ":>"):
		return fmt.Errorf("%w: state name %q contains ':' or '>'", ErrInvalidName, name)
	case strings.HasPrefix(name, "#"):
		return fmt.Errorf("%w: state name %q starts with '#'", ErrInvalidName, name)
	}
	return nil
}

// ValidateSymbol checks that a transition symbol can be written to a single line.
func ValidateSymbol(symbol string) error {
	switch {
	case symbol == "":
		return fmt.Errorf("%w: empty symbol", ErrInvalidName)
	case strings.ContainsAny(symbol, "\r\n"):
		return fmt.Errorf("%w: symbol %q contains a line break", ErrInvalidName, symbol)
	case IsMarker(symbol):
		return fmt.Errorf("%w: symbol %q collides with a section marker", ErrInvalidName, symbol)
	}
	return nil
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateKey checks automaton and session identifiers used as store keys.
// Keys become file names and Redis keys.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: key %q must match %s", ErrInvalidName, key, keyPattern.String())
	}
	return nil
}
