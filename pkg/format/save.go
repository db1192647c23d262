package format

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/aretw0/fasim/pkg/domain"
)

// Save writes the automaton in the five-section text format.
//
// Sections come in the fixed order #states, #initial, #accepting, #alphabet,
// #transitions. Entries are sorted by name, and transitions by (origin, symbol,
// destination), so two automata that are Equal produce byte-identical output whatever
// order they were built in. An automaton without an initial state cannot be saved.
func Save(a *domain.Automaton, w io.Writer) error {
	initial, ok := a.Initial()
	if !ok {
		return fmt.Errorf("save automaton: %w", domain.ErrNoInitialState)
	}

	bw := bufio.NewWriter(w)

	bw.WriteString(domain.MarkerStates + "\n")
	for _, s := range a.States() {
		bw.WriteString(s.Name + "\n")
	}

	bw.WriteString(domain.MarkerInitial + "\n")
	bw.WriteString(initial.Name + "\n")

	bw.WriteString(domain.MarkerAccepting + "\n")
	for _, name := range a.Finals() {
		bw.WriteString(name + "\n")
	}

	bw.WriteString(domain.MarkerAlphabet + "\n")
	for _, symbol := range a.Alphabet() {
		bw.WriteString(symbol + "\n")
	}

	bw.WriteString(domain.MarkerTransitions + "\n")
	for _, t := range a.Transitions() {
		bw.WriteString(t.From + ":" + t.Symbol + ">" + t.To + "\n")
	}

	// bufio.Writer errors are sticky, Flush reports the first one.
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write automaton: %w", err)
	}
	return nil
}

// Marshal is Save into a byte slice.
func Marshal(a *domain.Automaton) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(a, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
