package format

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/fasim/pkg/domain"
)

// ErrMalformed matches every *MalformedFileError with errors.Is.
var ErrMalformed = errors.New("malformed automaton file")

// MalformedFileError describes why a file was rejected.
// Line is 1-based; 0 means the problem is not tied to a single line (e.g. a missing section).
type MalformedFileError struct {
	Reason string
	Line   int
	Text   string
}

func (e *MalformedFileError) Error() string {
	switch {
	case e.Line > 0 && e.Text != "":
		return fmt.Sprintf("%v: line %d: %s: %q", ErrMalformed, e.Line, e.Reason, e.Text)
	case e.Line > 0:
		return fmt.Sprintf("%v: line %d: %s", ErrMalformed, e.Line, e.Reason)
	}
	return fmt.Sprintf("%v: %s", ErrMalformed, e.Reason)
}

func (e *MalformedFileError) Unwrap() error {
	return ErrMalformed
}

func malformed(line int, text, format string, args ...any) *MalformedFileError {
	return &MalformedFileError{Reason: fmt.Sprintf(format, args...), Line: line, Text: text}
}

// maxLine bounds a single line of input.
const maxLine = 1 << 20

// Load parses the five-section text format.
//
// The whole input is parsed into a staging draft and validated before any automaton is
// built, so a failure never yields a partially built automaton. Blank lines, surrounding
// whitespace and CRLF line endings are tolerated. The #alphabet section is ignored and
// recomputed from #transitions.
func Load(r io.Reader) (*domain.Automaton, error) {
	d, err := parse(r)
	if err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d.commit()
}

// Unmarshal is Load over a byte slice.
func Unmarshal(data []byte) (*domain.Automaton, error) {
	return Load(bytes.NewReader(data))
}

func parse(r io.Reader) (*draft, error) {
	d := newDraft()
	current := sectionNone

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)

	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if next, ok := sectionOf(line); ok {
			if err := advance(current, next, n); err != nil {
				return nil, err
			}
			current = next
			d.markerLine[next] = n
			continue
		}

		switch {
		case current == sectionNone:
			return nil, malformed(n, line, "content before the first section")
		case strings.HasPrefix(line, "#") && current != sectionAlphabet:
			return nil, malformed(n, line, "unknown section marker")
		}

		if err := parsers[current](d, line, n); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read automaton: %w", err)
	}

	if err := advance(current, sectionNone, n); err != nil {
		return nil, err
	}
	return d, nil
}

// advance checks a section change against the fixed order. next == sectionNone means
// end of input, where every remaining section is missing.
func advance(current, next section, n int) error {
	if next != sectionNone && next <= current {
		return malformed(n, next.marker(), "duplicate or out-of-order section")
	}
	for _, s := range order {
		if s <= current {
			continue
		}
		if s == next {
			return nil
		}
		return malformed(0, "", "missing section %s", s.marker())
	}
	return nil
}

// validate enforces the model invariants on the complete draft.
func (d *draft) validate() error {
	declared := make(map[string]int, len(d.states))
	for _, s := range d.states {
		if first, dup := declared[s.value]; dup {
			return malformed(s.line, s.value, "duplicate state (first declared on line %d)", first)
		}
		declared[s.value] = s.line
	}

	switch len(d.initial) {
	case 0:
		return malformed(d.markerLine[sectionInitial], domain.MarkerInitial, "missing initial state")
	case 1:
	default:
		extra := d.initial[1]
		return malformed(extra.line, extra.value, "more than one initial state")
	}
	if _, ok := declared[d.initial[0].value]; !ok {
		return malformed(d.initial[0].line, d.initial[0].value, "initial state is not declared in %s", domain.MarkerStates)
	}

	for _, f := range d.accepting {
		if _, ok := declared[f.value]; !ok {
			return malformed(f.line, f.value, "accepting state is not declared in %s", domain.MarkerStates)
		}
	}

	for _, t := range d.transitions {
		if _, ok := declared[t.From]; !ok {
			return malformed(t.line, t.text, "transition origin %q is not declared in %s", t.From, domain.MarkerStates)
		}
		if _, ok := declared[t.To]; !ok {
			return malformed(t.line, t.text, "transition destination %q is not declared in %s", t.To, domain.MarkerStates)
		}
	}
	return nil
}

// commit builds the automaton from a validated draft.
func (d *draft) commit() (*domain.Automaton, error) {
	a := domain.New()
	for _, s := range d.states {
		if _, err := a.AddState(s.value, false); err != nil {
			return nil, malformed(s.line, s.value, "%v", err)
		}
	}
	for _, f := range d.accepting {
		if err := a.MarkFinal(f.value, true); err != nil {
			return nil, malformed(f.line, f.value, "%v", err)
		}
	}
	if err := a.SetInitial(d.initial[0].value); err != nil {
		return nil, malformed(d.initial[0].line, d.initial[0].value, "%v", err)
	}
	for _, t := range d.transitions {
		if err := a.AddTransition(t.From, t.Symbol, t.To); err != nil {
			return nil, malformed(t.line, t.text, "%v", err)
		}
	}
	return a, nil
}
