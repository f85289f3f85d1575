package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/aiterm"
	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/registry"
	"github.com/aretw0/aiterm/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes console sessions over HTTP.
type Server struct {
	Hub      *Hub
	Registry *registry.Registry
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithRegistry serves command help from r (default: the built-in registry).
func WithRegistry(r *registry.Registry) ServerOption {
	return func(s *Server) {
		s.Registry = r
	}
}

// WithGatherer exposes g on /metrics (default: the global registry).
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for hub.
func NewHandler(hub *Hub, opts ...ServerOption) http.Handler {
	s := &Server{
		Hub:      hub,
		Registry: registry.Default(),
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return enableCORS(s.Routes())
}

// Routes builds the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/events", s.SendEvent)
			r.Get("/stream", s.StreamSession)
		})
	})
	r.Get("/commands", s.ListCommands)
	r.Get("/commands/{command}", s.DescribeCommand)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>aiterm API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type createSessionRequest struct {
	SessionID string `json:"session_id"`
}

type eventRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Hub.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			s.Logger.Warn("CreateSession: Invalid request body", "err", err)
			return
		}
	}
	id := body.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	loop, err := s.Hub.Open(r.Context(), id, true)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loop.State())
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	loop, err := s.Hub.Open(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loop.State())
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Hub.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendEvent handles POST /sessions/{id}/events.
func (s *Server) SendEvent(w http.ResponseWriter, r *http.Request) {
	var body eventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.Logger.Warn("SendEvent: Invalid request body", "err", err)
		return
	}

	if body.Value != "" {
		clean, err := runner.SanitizeInput(body.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err))
			s.Logger.Warn("SendEvent: Input rejected", "err", err, "size", len(body.Value))
			return
		}
		body.Value = clean
	}

	msg, err := console.ParseEvent(body.Type, body.Value)
	if err != nil {
		s.fail(w, err)
		return
	}

	loop, err := s.Hub.Open(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		s.fail(w, err)
		return
	}

	st, err := loop.Send(r.Context(), msg)
	if err != nil {
		s.fail(w, err)
		return
	}

	if _, isSubmit := msg.(console.Submit); isSubmit && wantWait(r) && st.IsLoading {
		st, err = loop.WaitFor(r.Context(), func(st *domain.SessionState) bool { return !st.IsLoading })
		if err != nil {
			s.fail(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, st)
}

// StreamSession handles GET /sessions/{id}/stream (SSE).
func (s *Server) StreamSession(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		s.Logger.Error("StreamSession: Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	loop, err := s.Hub.Open(r.Context(), sessionID, false)
	if err != nil {
		s.fail(w, err)
		return
	}

	ch, cancel := s.Hub.Streams.Subscribe(sessionID, ParseWatch(r.URL.Query().Get("watch"))...)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The snapshot lets the client start from a known state before applying diffs.
	if snapshot, err := json.Marshal(loop.State()); err == nil {
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", snapshot)
	}
	flusher.Flush()
	s.Logger.Info("SSE: Subscribed to session", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: Client disconnected", "session_id", sessionID)
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(diff)
			if err != nil {
				s.Logger.Error("SSE: Failed to encode diff", "session_id", sessionID, "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// ListCommands handles GET /commands.
func (s *Server) ListCommands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var entries []domain.RegistryEntry
	switch {
	case q.Get("q") != "":
		entries = s.Registry.Match(q.Get("q"))
	case q.Get("category") != "":
		entries = s.Registry.ByCategory(q.Get("category"))
	default:
		entries = s.Registry.All()
	}
	if entries == nil {
		entries = []domain.RegistryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// DescribeCommand handles GET /commands/{command}.
func (s *Server) DescribeCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	entry, ok := s.Registry.Lookup(name)
	if !ok {
		s.fail(w, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, name))
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown")
		_, _ = w.Write([]byte(registry.Markdown(entry)))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":           "aiterm-http",
		"version":       strings.TrimSpace(aiterm.Version),
		"api_version":   apiVersion,
		"live_sessions": strconv.Itoa(s.Hub.Live()),
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidSessionID), errors.Is(err, domain.ErrUnknownEvent):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUnknownCommand):
		status = http.StatusNotFound
	case errors.Is(err, console.ErrLoopStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("Request failed", "err", err, "status", status)
	}
	writeError(w, status, err.Error())
}

func wantWait(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ShutdownTimeout bounds the wait for in-flight requests on shutdown.
const ShutdownTimeout = 5 * time.Second
