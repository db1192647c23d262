package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register FILE [NAME]",
		Short: "Save an automaton file into the configured store",
		Long:  `Validates FILE and stores it under NAME (default: the file name without extension), so serve, mcp and run can refer to it by name.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if len(args) > 1 {
				name = args[1]
			}

			automaton, err := loadPath(path)
			if err != nil {
				return err
			}
			if err := a.engine().Register(cmd.Context(), name, automaton); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s: %s\n", name, describe(automaton))
			return nil
		},
	}
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the automata in the configured store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.automata.ListAutomata(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list automata: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No automata found.")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
