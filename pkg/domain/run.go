package domain

// Verdict is the outcome of simulating a whole input.
type Verdict string

const (
	VerdictAccepted Verdict = "accepted"
	VerdictRejected Verdict = "rejected"
)

// StepResult is the outcome of consuming one symbol.
// Stuck is an ordinary terminal outcome: no active state has a transition on the symbol,
// Next is empty and the remaining input cannot be consumed.
type StepResult struct {
	Next  Configuration
	Stuck bool
}

// TraceRecord is one consumed (or refused) symbol.
type TraceRecord struct {
	From   Configuration
	Symbol string
	To     Configuration // empty when the step got stuck
}

// Run is the result of a whole-input simulation.
type Run struct {
	Verdict Verdict

	// Final is the configuration the fold ended in. It is empty when Stuck.
	Final Configuration

	// Stuck is set when some symbol had no applicable transition.
	Stuck bool

	// StuckAt is the index of the symbol that got stuck, or -1.
	StuckAt int

	// Consumed counts the symbols that produced a non-empty configuration.
	Consumed int

	// Trace holds one record per attempted step. Only filled by traced simulations.
	Trace []TraceRecord
}

// Accepted is shorthand for Verdict == VerdictAccepted.
func (r *Run) Accepted() bool {
	return r.Verdict == VerdictAccepted
}

// Step is a TraceRecord resolved to state names, suitable for JSON and display.
type Step struct {
	From   []string `json:"from"`
	Symbol string   `json:"symbol"`
	To     []string `json:"to"`
}

// Named resolves the record against the automaton it was produced from.
func (r TraceRecord) Named(a *Automaton) Step {
	return Step{
		From:   r.From.Names(a),
		Symbol: r.Symbol,
		To:     r.To.Names(a),
	}
}

// NamedTrace resolves every record of a run.
func (r *Run) NamedTrace(a *Automaton) []Step {
	steps := make([]Step, 0, len(r.Trace))
	for _, rec := range r.Trace {
		steps = append(steps, rec.Named(a))
	}
	return steps
}
