package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	presentation "github.com/aretw0/fasim/internal/presentation/graph"
	"github.com/aretw0/fasim/internal/runtime"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
	"github.com/aretw0/fasim/pkg/graph"
	"github.com/aretw0/fasim/pkg/ports"
	"github.com/aretw0/fasim/pkg/session"
	"github.com/go-chi/chi/v5"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// Engine defines what the HTTP adapter needs from the simulator core.
type Engine interface {
	Store() ports.AutomatonStore
	Simulate(ctx context.Context, a *domain.Automaton, symbols []string) (*domain.Run, error)
	SimulateWithTrace(ctx context.Context, a *domain.Automaton, symbols []string) (*domain.Run, error)
}

// Server serves automata, simulations and sessions over REST.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Logger   *slog.Logger
	metrics  http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics mounts a Prometheus handler on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Route("/automata", func(r chi.Router) {
		r.Get("/", s.ListAutomata)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.GetAutomaton)
			r.Put("/", s.PutAutomaton)
			r.Delete("/", s.DeleteAutomaton)
			r.Post("/simulate", s.Simulate)
			r.Get("/graph", s.Graph)
		})
	})
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/step", s.StepSession)
		})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AutomatonSummary describes a stored automaton.
type AutomatonSummary struct {
	Name          string   `json:"name"`
	States        int      `json:"states"`
	Transitions   int      `json:"transitions"`
	Alphabet      []string `json:"alphabet"`
	Deterministic bool     `json:"deterministic"`
}

// SimulateRequest is the body of POST /automata/{name}/simulate.
// Input is split into one symbol per character; Symbols takes precedence when set.
type SimulateRequest struct {
	Input   string   `json:"input"`
	Symbols []string `json:"symbols,omitempty"`
	Trace   bool     `json:"trace"`
}

// RunResponse is a simulation result resolved to state names.
type RunResponse struct {
	Verdict  domain.Verdict `json:"verdict"`
	Accepted bool           `json:"accepted"`
	Stuck    bool           `json:"stuck"`
	StuckAt  int            `json:"stuck_at"`
	Consumed int            `json:"consumed"`
	Final    []string       `json:"final"`
	Trace    []domain.Step  `json:"trace,omitempty"`
}

// StartSessionRequest is the body of POST /sessions.
type StartSessionRequest struct {
	Automaton string `json:"automaton"`
}

// StepRequest is the body of POST /sessions/{id}/step. Either a single Symbol or an
// Input string fed one character at a time.
type StepRequest struct {
	Symbol string `json:"symbol,omitempty"`
	Input  string `json:"input,omitempty"`
}

// SessionResponse adds the derived verdict to a session.
type SessionResponse struct {
	*domain.Session
	Verdict domain.Verdict `json:"verdict"`
}

func summarize(name string, a *domain.Automaton) AutomatonSummary {
	return AutomatonSummary{
		Name:          name,
		States:        a.Len(),
		Transitions:   a.TransitionCount(),
		Alphabet:      a.Alphabet(),
		Deterministic: a.IsDeterministic(),
	}
}

// ListAutomata handles GET /automata.
func (s *Server) ListAutomata(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.Store().ListAutomata(r.Context())
	if err != nil {
		s.fail(w, "ListAutomata", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"automata": names})
}

// GetAutomaton handles GET /automata/{name}. It returns the text format, or the YAML
// document model as JSON with ?format=json.
func (s *Server) GetAutomaton(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	a, err := s.Engine.Store().LoadAutomaton(r.Context(), name)
	if err != nil {
		s.fail(w, "GetAutomaton", err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		s.writeJSON(w, http.StatusOK, format.ToDocument(a))
		return
	}

	data, err := format.Marshal(a)
	if err != nil {
		s.fail(w, "GetAutomaton", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

// PutAutomaton handles PUT /automata/{name}. The body is the text format, or a YAML
// document when the content type says so.
func (s *Server) PutAutomaton(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var a *domain.Automaton
	var err error
	if isYAML(r.Header.Get("Content-Type")) {
		a, err = format.ImportYAML(body)
	} else {
		a, err = format.Load(body)
	}
	if err != nil {
		s.fail(w, "PutAutomaton", err)
		return
	}

	if err := s.Engine.Store().SaveAutomaton(r.Context(), name, a); err != nil {
		s.fail(w, "PutAutomaton", err)
		return
	}
	s.writeJSON(w, http.StatusOK, summarize(name, a))
}

func isYAML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasSuffix(mediaType, "yaml")
}

// DeleteAutomaton handles DELETE /automata/{name}.
func (s *Server) DeleteAutomaton(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Store().DeleteAutomaton(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, "DeleteAutomaton", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Simulate handles POST /automata/{name}/simulate.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	var body SimulateRequest
	if !s.decode(w, r, "Simulate", &body) {
		return
	}

	a, err := s.Engine.Store().LoadAutomaton(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "Simulate", err)
		return
	}

	symbols := body.Symbols
	if symbols == nil {
		symbols = runtime.Symbols(body.Input)
	}

	var run *domain.Run
	if body.Trace {
		run, err = s.Engine.SimulateWithTrace(r.Context(), a, symbols)
	} else {
		run, err = s.Engine.Simulate(r.Context(), a, symbols)
	}
	if err != nil {
		s.fail(w, "Simulate", err)
		return
	}

	resp := RunResponse{
		Verdict:  run.Verdict,
		Accepted: run.Accepted(),
		Stuck:    run.Stuck,
		StuckAt:  run.StuckAt,
		Consumed: run.Consumed,
		Final:    run.Final.Names(a),
	}
	if body.Trace {
		resp.Trace = run.NamedTrace(a)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Graph handles GET /automata/{name}/graph?format=json|mermaid|dot.
func (s *Server) Graph(w http.ResponseWriter, r *http.Request) {
	a, err := s.Engine.Store().LoadAutomaton(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "Graph", err)
		return
	}
	desc := graph.Export(a)

	switch f := r.URL.Query().Get("format"); f {
	case "", "json":
		s.writeJSON(w, http.StatusOK, desc)
	case "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, presentation.GenerateMermaid(desc, nil))
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = io.WriteString(w, presentation.GenerateDOT(desc, nil))
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown graph format %q", f))
	}
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// StartSession handles POST /sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartSessionRequest
	if !s.decode(w, r, "StartSession", &body) {
		return
	}
	sess, err := s.Sessions.Start(r.Context(), body.Automaton)
	if err != nil {
		s.fail(w, "StartSession", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SessionResponse{Session: sess, Verdict: sess.Verdict()})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{Session: sess, Verdict: sess.Verdict()})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StepSession handles POST /sessions/{id}/step.
func (s *Server) StepSession(w http.ResponseWriter, r *http.Request) {
	var body StepRequest
	if !s.decode(w, r, "StepSession", &body) {
		return
	}

	symbols := runtime.Symbols(body.Input)
	if body.Symbol != "" {
		symbols = []string{body.Symbol}
	}
	if len(symbols) == 0 {
		s.writeError(w, http.StatusBadRequest, "symbol or input is required")
		return
	}

	sess, err := s.Sessions.Feed(r.Context(), chi.URLParam(r, "id"), symbols)
	if err != nil {
		s.fail(w, "StepSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{Session: sess, Verdict: sess.Verdict()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		s.Logger.Warn(op+": Invalid request body", "error", err)
		return false
	}
	return true
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrAutomatonNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionStuck):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoInitialState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidName), errors.Is(err, format.ErrMalformed):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "error", err)
	} else {
		s.Logger.Debug(op+" rejected", "error", err, "status", status)
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "error", err)
	}
}
