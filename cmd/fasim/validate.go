package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/spf13/cobra"
)

var errInvalidFiles = errors.New("validation failed")

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check automaton files for consistency",
		Long: `Loads each file and reports the first problem found: a missing or out-of-order section,
an unknown state, an invalid name. Valid files get a one-line summary.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				automaton, err := loadPath(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "✗ %v\n", err)
					a.logger.Debug("validation failed", "path", path, "error", err)
					continue
				}
				fmt.Fprintf(out, "✓ %s: %s\n", path, describe(automaton))
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", errInvalidFiles, failed, len(args))
			}
			return nil
		},
	}
}

// describe summarizes an automaton in one line.
func describe(a *domain.Automaton) string {
	kind := "nondeterministic"
	if a.IsDeterministic() {
		kind = "deterministic"
	}
	return fmt.Sprintf("%d states, %d transitions, alphabet {%s}, %s",
		a.Len(), a.TransitionCount(), strings.Join(a.Alphabet(), ", "), kind)
}
