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

func newSessionCmd(a *app) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage step-by-step simulations",
		Long:  `Start, advance, list, inspect and remove persistent sessions stored alongside the automata.`,
	}

	startCmd := &cobra.Command{
		Use:   "start NAME",
		Short: "Start a session on a stored automaton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := a.sessionManager(a.engine())
			sess, err := mgr.Start(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.ID)
			printSession(cmd.OutOrStdout(), sess)
			return nil
		},
	}

	stepCmd := &cobra.Command{
		Use:   "step ID SYMBOLS",
		Short: "Feed symbols to a session, one per character",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := a.sessionManager(a.engine())
			sess, err := mgr.Feed(cmd.Context(), args[0], fasim.Symbols(args[1]))
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), sess)
			return nil
		},
	}

	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List all sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.sessions.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No active sessions found.")
				return nil
			}
			fmt.Fprintln(out, "Active Sessions:")
			for _, id := range ids {
				fmt.Fprintln(out, "- "+id)
			}
			return nil
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect ID",
		Short: "Print a session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.sessions.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load session %q: %w", args[0], err)
			}
			data, err := json.MarshalIndent(sess, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm ID...",
		Short: "Remove sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := a.sessionManager(a.engine())
			for _, id := range args {
				if err := mgr.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			}
			return nil
		},
	}

	sessionCmd.AddCommand(startCmd, stepCmd, lsCmd, inspectCmd, rmCmd)
	return sessionCmd
}

func printSession(out io.Writer, sess *domain.Session) {
	fmt.Fprintf(out, "automaton: %s\n", sess.Automaton)
	fmt.Fprintf(out, "consumed:  %q\n", strings.Join(sess.Consumed, ""))
	fmt.Fprintf(out, "active:    %s\n", tui.SetNotation(sess.Active))
	if sess.Stuck {
		fmt.Fprintln(out, "stuck:     true")
	}
	fmt.Fprintf(out, "verdict:   %s\n", sess.Verdict())
}
