package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/aretw0/fasim/pkg/format"
	"github.com/spf13/cobra"
)

func newFmtCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt FILE",
		Short: "Rewrite an automaton file in canonical form",
		Long: `Loads FILE and prints it with sorted states, accepting states, alphabet and transitions.
With -w the file is rewritten in place when it is not already canonical.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write, _ := cmd.Flags().GetBool("write")
			path := args[0]
			if write && isYAMLPath(path) {
				return fmt.Errorf("-w only rewrites text-format files; redirect the output instead")
			}

			automaton, err := loadPath(path)
			if err != nil {
				return err
			}
			canonical, err := format.Marshal(automaton)
			if err != nil {
				return err
			}

			if !write {
				_, err := cmd.OutOrStdout().Write(canonical)
				return err
			}

			current, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if bytes.Equal(current, canonical) {
				a.logger.Debug("already canonical", "path", path)
				return nil
			}
			if err := os.WriteFile(path, canonical, 0644); err != nil {
				return fmt.Errorf("failed to write automaton file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolP("write", "w", false, "Write the result to FILE instead of stdout")
	return cmd
}
