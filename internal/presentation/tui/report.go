package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/fasim/pkg/domain"
)

// TraceReport renders a simulation as a markdown document: verdict, summary and a
// table with one row per attempted step.
func TraceReport(name string, a *domain.Automaton, symbols []string, run *domain.Run) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", escapeCell(name))
	fmt.Fprintf(&sb, "**Verdict:** %s\n\n", run.Verdict)
	fmt.Fprintf(&sb, "- Input: `%s` (%d symbols)\n", strings.Join(symbols, ""), len(symbols))
	fmt.Fprintf(&sb, "- Consumed: %d\n", run.Consumed)
	if run.Stuck {
		fmt.Fprintf(&sb, "- Stuck at symbol %d (`%s`)\n", run.StuckAt+1, symbols[run.StuckAt])
	}
	fmt.Fprintf(&sb, "- Final configuration: %s\n", SetNotation(run.Final.Names(a)))

	if len(run.Trace) == 0 {
		return sb.String()
	}

	sb.WriteString("\n| # | From | Symbol | To |\n|---|------|--------|----|\n")
	for i, step := range run.NamedTrace(a) {
		to := SetNotation(step.To)
		if len(step.To) == 0 {
			to = "stuck"
		}
		fmt.Fprintf(&sb, "| %d | %s | `%s` | %s |\n",
			i+1, escapeCell(SetNotation(step.From)), escapeCell(step.Symbol), escapeCell(to))
	}
	return sb.String()
}

// SetNotation formats state names as {a, b}.
func SetNotation(names []string) string {
	return "{" + strings.Join(names, ", ") + "}"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
