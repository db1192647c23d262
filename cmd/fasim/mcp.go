package main

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aretw0/fasim/pkg/adapters/mcp"
	"github.com/aretw0/fasim/pkg/observability"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts fasim as an MCP Server so AI agents can list automata, simulate inputs,
export diagrams and drive sessions as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, _ := cmd.Flags().GetString("transport")
			port, _ := cmd.Flags().GetInt("port")

			eng := a.engine(observability.LoggingHooks(a.logger))
			srv := mcp.NewServer(eng, a.sessionManager(eng))

			switch transport {
			case "stdio":
				// Logs already go to stderr, keeping stdout for JSON-RPC.
				a.logger.Info("starting MCP server (stdio)")
				return srv.ServeStdio()

			case "sse":
				a.logger.Info("starting MCP server (SSE)", "port", port)

				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("MCP server execution failed: %w", err)
				}
				a.logger.Info("MCP server stopped gracefully")
				return nil

			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	return cmd
}
