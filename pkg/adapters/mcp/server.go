package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/fasim"
	presentation "github.com/aretw0/fasim/internal/presentation/graph"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
	"github.com/aretw0/fasim/pkg/graph"
	"github.com/aretw0/fasim/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

const automataURI = "fasim://automata"

// Server exposes automata, simulations and sessions as MCP tools and resources.
type Server struct {
	engine    *fasim.Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// SimulateArgs are the arguments of the simulate tool.
type SimulateArgs struct {
	Automaton string `mapstructure:"automaton"`
	Input     string `mapstructure:"input"`
	Trace     bool   `mapstructure:"trace"`
}

// GraphArgs are the arguments of the export_graph tool.
type GraphArgs struct {
	Automaton string `mapstructure:"automaton"`
	Format    string `mapstructure:"format"`
}

// StartSessionArgs are the arguments of the start_session tool.
type StartSessionArgs struct {
	Automaton string `mapstructure:"automaton"`
}

// StepSessionArgs are the arguments of the step_session tool.
type StepSessionArgs struct {
	SessionID string `mapstructure:"session_id"`
	Input     string `mapstructure:"input"`
}

// SimulateResult is the JSON returned by the simulate tool.
type SimulateResult struct {
	Verdict  domain.Verdict `json:"verdict"`
	Stuck    bool           `json:"stuck"`
	StuckAt  int            `json:"stuck_at"`
	Consumed int            `json:"consumed"`
	Final    []string       `json:"final"`
	Trace    []domain.Step  `json:"trace,omitempty"`
}

// NewServer creates a new MCP server.
func NewServer(engine *fasim.Engine, sessions *session.Manager) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("fasim-mcp", strings.TrimSpace(fasim.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_automata",
		mcp.WithDescription("List the names of the stored automata."),
	), s.handleListAutomata)

	s.mcpServer.AddTool(mcp.NewTool("simulate",
		mcp.WithDescription("Decide whether an automaton accepts an input. Each character of input is one symbol."),
		mcp.WithString("automaton", mcp.Required(), mcp.Description("Name of the stored automaton")),
		mcp.WithString("input", mcp.Description("Input word (empty string is allowed)")),
		mcp.WithBoolean("trace", mcp.Description("Include every step in the result")),
	), s.handleSimulate)

	s.mcpServer.AddTool(mcp.NewTool("export_graph",
		mcp.WithDescription("Export the state diagram of an automaton."),
		mcp.WithString("automaton", mcp.Required(), mcp.Description("Name of the stored automaton")),
		mcp.WithString("format", mcp.Description("json (default), mermaid or dot"), mcp.Enum("json", "mermaid", "dot")),
	), s.handleExportGraph)

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a step-by-step simulation positioned on the initial state."),
		mcp.WithString("automaton", mcp.Required(), mcp.Description("Name of the stored automaton")),
	), s.handleStartSession)

	s.mcpServer.AddTool(mcp.NewTool("step_session",
		mcp.WithDescription("Feed symbols to a session, one per character of input."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_session")),
		mcp.WithString("input", mcp.Required(), mcp.Description("Symbols to consume")),
	), s.handleStepSession)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(automataURI, "Stored Automata",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.engine.Store().ListAutomata(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list automata: %w", err)
		}
		jsonBytes, _ := json.Marshal(names)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: automataURI, MIMEType: "application/json", Text: string(jsonBytes)},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(automataURI+"/{name}", "Automaton Definition",
		mcp.WithTemplateDescription("An automaton in the #states/#initial/#accepting/#alphabet/#transitions text format"),
		mcp.WithTemplateMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		name := strings.TrimPrefix(uri, automataURI+"/")
		a, err := s.engine.Automaton(ctx, name)
		if err != nil {
			return nil, err
		}
		data, err := format.Marshal(a)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "text/plain", Text: string(data)},
		}, nil
	})
}

// bind decodes tool arguments into a typed struct.
func bind(request mcp.CallToolRequest, v any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError reports domain failures to the model instead of failing the protocol call.
func toolError(op string, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	slog.Debug("MCP tool failed", "tool", op, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err)), nil
}

func (s *Server) handleListAutomata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.engine.Store().ListAutomata(ctx)
	if err != nil {
		return toolError("list_automata", err)
	}
	return jsonResult(names)
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args SimulateArgs
	if err := bind(request, &args); err != nil {
		return toolError("simulate", err)
	}

	a, run, err := s.engine.Run(ctx, args.Automaton, args.Input, args.Trace)
	if err != nil {
		return toolError("simulate", err)
	}

	res := SimulateResult{
		Verdict:  run.Verdict,
		Stuck:    run.Stuck,
		StuckAt:  run.StuckAt,
		Consumed: run.Consumed,
		Final:    run.Final.Names(a),
	}
	if args.Trace {
		res.Trace = run.NamedTrace(a)
	}
	return jsonResult(res)
}

func (s *Server) handleExportGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args GraphArgs
	if err := bind(request, &args); err != nil {
		return toolError("export_graph", err)
	}

	a, err := s.engine.Automaton(ctx, args.Automaton)
	if err != nil {
		return toolError("export_graph", err)
	}
	desc := graph.Export(a)

	switch args.Format {
	case "", "json":
		return jsonResult(desc)
	case "mermaid":
		return mcp.NewToolResultText(presentation.GenerateMermaid(desc, nil)), nil
	case "dot":
		return mcp.NewToolResultText(presentation.GenerateDOT(desc, nil)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown graph format %q", args.Format)), nil
	}
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args StartSessionArgs
	if err := bind(request, &args); err != nil {
		return toolError("start_session", err)
	}
	sess, err := s.sessions.Start(ctx, args.Automaton)
	if err != nil {
		return toolError("start_session", err)
	}
	return jsonResult(sess)
}

func (s *Server) handleStepSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args StepSessionArgs
	if err := bind(request, &args); err != nil {
		return toolError("step_session", err)
	}
	sess, err := s.sessions.Feed(ctx, args.SessionID, fasim.Symbols(args.Input))
	if err != nil {
		return toolError("step_session", err)
	}
	return jsonResult(sess)
}
