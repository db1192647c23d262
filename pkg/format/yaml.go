package format

import (
	"fmt"
	"io"

	"github.com/aretw0/fasim/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Document is the structured form of an automaton, used for YAML import and for JSON
// payloads of the adapters.
type Document struct {
	States      []string            `yaml:"states" json:"states"`
	Initial     string              `yaml:"initial" json:"initial"`
	Accepting   []string            `yaml:"accepting" json:"accepting"`
	Transitions []domain.Transition `yaml:"transitions" json:"transitions"`
}

// ImportYAML reads a Document from YAML and builds the automaton through the same
// staging and validation as Load.
//
//	states: [q0, q1]
//	initial: q0
//	accepting: [q1]
//	transitions:
//	  - {from: q0, symbol: a, to: q1}
func ImportYAML(r io.Reader) (*domain.Automaton, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrMalformed, err)
	}
	return FromDocument(doc)
}

// FromDocument validates and builds an automaton from its structured form.
// Errors are *MalformedFileError without line positions.
func FromDocument(doc Document) (*domain.Automaton, error) {
	d := newDraft()
	for _, s := range doc.States {
		if err := parseStateLine(d, s, 0); err != nil {
			return nil, err
		}
	}
	if doc.Initial != "" {
		if err := parseInitialLine(d, doc.Initial, 0); err != nil {
			return nil, err
		}
	}
	for _, f := range doc.Accepting {
		if err := parseAcceptingLine(d, f, 0); err != nil {
			return nil, err
		}
	}
	for _, t := range doc.Transitions {
		if err := domain.ValidateSymbol(t.Symbol); err != nil {
			return nil, malformed(0, "", "invalid transition symbol: %v", err)
		}
		d.transitions = append(d.transitions, draftTransition{
			Transition: t,
			text:       t.From + ":" + t.Symbol + ">" + t.To,
		})
	}

	if err := d.validate(); err != nil {
		return nil, err
	}
	return d.commit()
}

// ToDocument is the inverse of FromDocument. Slices are sorted like Save output.
func ToDocument(a *domain.Automaton) Document {
	doc := Document{
		States:      []string{},
		Accepting:   []string{},
		Transitions: a.Transitions(),
	}
	for _, s := range a.States() {
		doc.States = append(doc.States, s.Name)
	}
	doc.Accepting = append(doc.Accepting, a.Finals()...)
	if initial, ok := a.Initial(); ok {
		doc.Initial = initial.Name
	}
	return doc
}
