package tui

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/muesli/termenv"
)

const (
	colorActive   = "#22c55e"
	colorAccepted = "#22c55e"
	colorRejected = "#ef4444"
)

// Styler colors simulation output for a terminal profile. termenv.Ascii disables color.
type Styler struct {
	profile termenv.Profile
}

// NewStyler creates a Styler for the given profile.
func NewStyler(profile termenv.Profile) Styler {
	return Styler{profile: profile}
}

// Verdict renders a verdict in green or red.
func (s Styler) Verdict(v domain.Verdict) string {
	color := colorRejected
	if v == domain.VerdictAccepted {
		color = colorAccepted
	}
	return s.profile.String(strings.ToUpper(string(v))).Foreground(s.profile.Color(color)).Bold().String()
}

// States lists every state, highlighting the active ones and marking finals with '*'.
func (s Styler) States(a *domain.Automaton, active []string) string {
	parts := make([]string, 0, a.Len())
	for _, st := range a.States() {
		label := st.Name
		if st.Final {
			label += "*"
		}
		if slices.Contains(active, st.Name) {
			parts = append(parts, s.profile.String("["+label+"]").Foreground(s.profile.Color(colorActive)).Bold().String())
			continue
		}
		parts = append(parts, " "+label+" ")
	}
	return strings.Join(parts, " ")
}

// Player replays a traced run one step per tick.
type Player struct {
	Out      io.Writer
	Interval time.Duration
	Styler   Styler
}

// Play writes the initial configuration, then one frame per trace record, waiting
// Interval between frames. It stops early when ctx is done.
func (p *Player) Play(ctx context.Context, a *domain.Automaton, run *domain.Run) error {
	steps := run.NamedTrace(a)

	initial := []string{}
	if st, ok := a.Initial(); ok {
		initial = []string{st.Name}
	}
	fmt.Fprintf(p.Out, "start       %s\n", p.Styler.States(a, initial))

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for i, step := range steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if len(step.To) == 0 {
			fmt.Fprintf(p.Out, "%3d %-7q stuck: no transition from %s\n", i+1, step.Symbol, SetNotation(step.From))
			continue
		}
		fmt.Fprintf(p.Out, "%3d %-7q %s\n", i+1, step.Symbol, p.Styler.States(a, step.To))
	}

	fmt.Fprintf(p.Out, "\n%s\n", p.Styler.Verdict(run.Verdict))
	return nil
}
