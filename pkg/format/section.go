package format

import (
	"strings"

	"github.com/aretw0/fasim/pkg/domain"
)

// section is the parser state: which block of the file the current line belongs to.
type section int

const (
	sectionNone section = iota
	sectionStates
	sectionInitial
	sectionAccepting
	sectionAlphabet
	sectionTransitions
)

// order is the fixed order sections are written and expected in.
var order = []section{sectionStates, sectionInitial, sectionAccepting, sectionAlphabet, sectionTransitions}

func (s section) marker() string {
	switch s {
	case sectionStates:
		return domain.MarkerStates
	case sectionInitial:
		return domain.MarkerInitial
	case sectionAccepting:
		return domain.MarkerAccepting
	case sectionAlphabet:
		return domain.MarkerAlphabet
	case sectionTransitions:
		return domain.MarkerTransitions
	}
	return ""
}

func sectionOf(line string) (section, bool) {
	for _, s := range order {
		if line == s.marker() {
			return s, true
		}
	}
	return sectionNone, false
}

// lineParser consumes one non-blank line of its section into the draft.
type lineParser func(d *draft, line string, n int) error

var parsers = map[section]lineParser{
	sectionStates:      parseStateLine,
	sectionInitial:     parseInitialLine,
	sectionAccepting:   parseAcceptingLine,
	sectionAlphabet:    parseAlphabetLine,
	sectionTransitions: parseTransitionLine,
}

// entry is a value with the line it came from.
type entry struct {
	value string
	line  int
}

type draftTransition struct {
	domain.Transition
	line int
	text string
}

// draft is the staging structure. Nothing is committed to an Automaton until the whole
// draft has been validated.
type draft struct {
	states      []entry
	initial     []entry
	accepting   []entry
	alphabet    []entry
	transitions []draftTransition

	// markerLine records where each section started, for error positions.
	markerLine map[section]int
}

func newDraft() *draft {
	return &draft{markerLine: make(map[section]int)}
}

func parseStateLine(d *draft, line string, n int) error {
	if err := domain.ValidateStateName(line); err != nil {
		return malformed(n, line, "invalid state name: %v", err)
	}
	d.states = append(d.states, entry{value: line, line: n})
	return nil
}

func parseInitialLine(d *draft, line string, n int) error {
	if err := domain.ValidateStateName(line); err != nil {
		return malformed(n, line, "invalid initial state: %v", err)
	}
	d.initial = append(d.initial, entry{value: line, line: n})
	return nil
}

func parseAcceptingLine(d *draft, line string, n int) error {
	if err := domain.ValidateStateName(line); err != nil {
		return malformed(n, line, "invalid accepting state: %v", err)
	}
	d.accepting = append(d.accepting, entry{value: line, line: n})
	return nil
}

// parseAlphabetLine keeps the declared symbols for reference only. The alphabet of the
// loaded automaton is always derived from its transitions.
func parseAlphabetLine(d *draft, line string, n int) error {
	d.alphabet = append(d.alphabet, entry{value: line, line: n})
	return nil
}

// parseTransitionLine reads origin:symbol>destination. The origin ends at the first ':'
// and the destination starts after the last '>', so symbols may contain both.
func parseTransitionLine(d *draft, line string, n int) error {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return malformed(n, line, "unparsable transition: missing ':'")
	}
	rest := line[colon+1:]
	arrow := strings.LastIndex(rest, ">")
	if arrow < 0 {
		return malformed(n, line, "unparsable transition: missing '>'")
	}

	t := domain.Transition{From: line[:colon], Symbol: rest[:arrow], To: rest[arrow+1:]}
	if t.From == "" || t.Symbol == "" || t.To == "" {
		return malformed(n, line, "unparsable transition: empty origin, symbol or destination")
	}
	if err := domain.ValidateStateName(t.From); err != nil {
		return malformed(n, line, "unparsable transition: %v", err)
	}
	if err := domain.ValidateStateName(t.To); err != nil {
		return malformed(n, line, "unparsable transition: %v", err)
	}
	if err := domain.ValidateSymbol(t.Symbol); err != nil {
		return malformed(n, line, "unparsable transition: %v", err)
	}

	d.transitions = append(d.transitions, draftTransition{Transition: t, line: n, text: line})
	return nil
}
