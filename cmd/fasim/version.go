package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/fasim"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fasim",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fasim version %s\n", strings.TrimSpace(fasim.Version))
		},
	}
}
