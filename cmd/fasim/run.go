package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/fasim"
	"github.com/aretw0/fasim/internal/presentation/tui"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/spf13/cobra"
)

// runResult is the --json output of run.
type runResult struct {
	Automaton string         `json:"automaton"`
	Input     string         `json:"input"`
	Verdict   domain.Verdict `json:"verdict"`
	Stuck     bool           `json:"stuck"`
	StuckAt   int            `json:"stuck_at"`
	Consumed  int            `json:"consumed"`
	Final     []string       `json:"final"`
	Trace     []domain.Step  `json:"trace,omitempty"`
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE_OR_NAME [INPUT]",
		Short: "Decide whether an automaton accepts an input word",
		Long: `Simulates the automaton on INPUT, one symbol per character, and prints the verdict.
FILE_OR_NAME is a path to a .txt (or .yaml) automaton, or the name of a stored one.
An omitted INPUT is the empty word.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trace, _ := cmd.Flags().GetBool("trace")
			play, _ := cmd.Flags().GetBool("play")
			jsonMode, _ := cmd.Flags().GetBool("json")

			if play && jsonMode {
				return fmt.Errorf("--play and --json cannot be used together")
			}

			interval := a.cfg.Play.Interval
			if cmd.Flags().Changed("interval") {
				interval, _ = cmd.Flags().GetDuration("interval")
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}

			input := ""
			if len(args) > 1 {
				input = args[1]
			}

			ctx := cmd.Context()
			eng := a.engine()
			automaton, name, err := resolve(ctx, eng, args[0])
			if err != nil {
				return err
			}

			symbols := fasim.Symbols(input)
			traced := trace || play
			var run *domain.Run
			if traced {
				run, err = eng.SimulateWithTrace(ctx, automaton, symbols)
			} else {
				run, err = eng.Simulate(ctx, automaton, symbols)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonMode:
				res := runResult{
					Automaton: name,
					Input:     input,
					Verdict:   run.Verdict,
					Stuck:     run.Stuck,
					StuckAt:   run.StuckAt,
					Consumed:  run.Consumed,
					Final:     run.Final.Names(automaton),
				}
				if traced {
					res.Trace = run.NamedTrace(automaton)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)

			case play:
				player := tui.Player{Out: out, Interval: interval, Styler: tui.NewStyler(profileFor(out))}
				return player.Play(ctx, automaton, run)

			case trace:
				return printReport(out, tui.TraceReport(name, automaton, symbols, run))

			default:
				styler := tui.NewStyler(profileFor(out))
				fmt.Fprintln(out, styler.Verdict(run.Verdict))
				if run.Stuck {
					fmt.Fprintf(out, "stuck at symbol %d (%q)\n", run.StuckAt+1, symbols[run.StuckAt])
				}
				return nil
			}
		},
	}

	cmd.Flags().BoolP("trace", "t", false, "Print a step-by-step report")
	cmd.Flags().Bool("play", false, "Replay the simulation one step per interval")
	cmd.Flags().Duration("interval", 0, "Delay between playback frames (default from config, 1s)")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}

// printReport renders markdown with glamour on terminals and verbatim elsewhere.
func printReport(out io.Writer, markdown string) error {
	var render tui.Renderer = tui.PlainRenderer
	if isTerminal(out) {
		r, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		render = r
	}

	rendered, err := render(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, strings.TrimLeft(rendered, "\n"))
	return err
}
