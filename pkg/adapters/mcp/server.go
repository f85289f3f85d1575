package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/aiterm"
	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/ports"
	"github.com/aretw0/aiterm/pkg/registry"
	"github.com/aretw0/aiterm/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource holding the full command catalog.
const CatalogURI = "aiterm://commands"

// MatchResponse is the result of match_commands.
type MatchResponse struct {
	Matches []domain.RegistryEntry `json:"matches" jsonschema_description:"Registry entries, prefix matches first"`
}

// CategoriesResponse is the result of list_categories.
type CategoriesResponse struct {
	Categories []string `json:"categories" jsonschema_description:"Fine-grained labels such as file-system"`
	Groups     []string `json:"groups" jsonschema_description:"Catalog sections such as git"`
}

// SuggestResponse is the result of suggest.
type SuggestResponse struct {
	Suggestions  []string `json:"suggestions" jsonschema_description:"Local matches followed by remote completions"`
	RemoteFailed bool     `json:"remote_failed,omitempty" jsonschema_description:"The remote service could not be reached"`
}

type matchArgs struct {
	Partial string `json:"partial"`
	Limit   int    `json:"limit"`
}

type describeArgs struct {
	Command string `json:"command"`
}

type suggestArgs struct {
	Partial string `json:"partial"`
}

// Server exposes the command registry and the suggestion merge as an MCP server.
type Server struct {
	registry   *registry.Registry
	suggester  ports.Suggester
	timeout    time.Duration
	localLimit int
	totalLimit int
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSuggester adds remote completions to the suggest tool.
func WithSuggester(s ports.Suggester) Option {
	return func(srv *Server) {
		srv.suggester = s
	}
}

// WithSuggestTimeout bounds the remote request of the suggest tool.
func WithSuggestTimeout(d time.Duration) Option {
	return func(srv *Server) {
		srv.timeout = d
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(srv *Server) {
		srv.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(reg *registry.Registry, opts ...Option) *Server {
	if reg == nil {
		reg = registry.Default()
	}
	s := &Server{
		registry:   reg,
		timeout:    console.DefaultSuggestTimeout,
		localLimit: console.DefaultLocalLimit,
		totalLimit: console.DefaultTotalLimit,
		logger:     logging.NewNop(),
		mcpServer:  server.NewMCPServer("aiterm-mcp", strings.TrimSpace(aiterm.Version)),
	}
	for _, opt := range opts {
		opt(s)
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

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: match_commands
	matchTool := mcp.NewTool("match_commands",
		mcp.WithDescription("Find known terminal commands containing a partial string. Commands starting with it rank first."),
		mcp.WithString("partial", mcp.Required(), mcp.Description("Text typed so far, e.g. 'git st'")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of matches (optional, all by default)")),
		mcp.WithOutputSchema[MatchResponse](),
	)
	s.mcpServer.AddTool(matchTool, mcp.NewStructuredToolHandler(func(ctx context.Context, request mcp.CallToolRequest, args matchArgs) (MatchResponse, error) {
		return s.Match(args.Partial, args.Limit)
	}))

	// TOOL: describe_command
	s.mcpServer.AddTool(mcp.NewTool("describe_command",
		mcp.WithDescription("Show usage, examples and category of a known command as Markdown."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Exact command, e.g. 'git status'")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args describeArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		text, err := s.Describe(args.Command)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	})

	// TOOL: list_categories
	s.mcpServer.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the command categories and catalog groups."),
		mcp.WithOutputSchema[CategoriesResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, request mcp.CallToolRequest, args struct{}) (CategoriesResponse, error) {
		return s.Categories(), nil
	}))

	// TOOL: suggest
	suggestTool := mcp.NewTool("suggest",
		mcp.WithDescription("Autocomplete a partial command the way the console does: registry matches first, then remote completions."),
		mcp.WithString("partial", mcp.Required(), mcp.Description("Text typed so far")),
		mcp.WithOutputSchema[SuggestResponse](),
	)
	s.mcpServer.AddTool(suggestTool, mcp.NewStructuredToolHandler(func(ctx context.Context, request mcp.CallToolRequest, args suggestArgs) (SuggestResponse, error) {
		return s.Suggest(ctx, args.Partial)
	}))
}

// Match returns the registry entries matching partial, at most limit when limit > 0.
func (s *Server) Match(partial string, limit int) (MatchResponse, error) {
	clean, err := runner.SanitizeInput(partial)
	if err != nil {
		s.logger.Warn("MCP match_commands: Input rejected", "err", err, "size", len(partial))
		return MatchResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	matches := s.registry.Match(clean)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return MatchResponse{Matches: matches}, nil
}

// Describe renders the help page of command.
func (s *Server) Describe(command string) (string, error) {
	entry, ok := s.registry.Lookup(command)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownCommand, command)
	}
	return registry.Markdown(entry), nil
}

// Categories lists the registry categories and groups.
func (s *Server) Categories() CategoriesResponse {
	return CategoriesResponse{Categories: s.registry.Categories(), Groups: s.registry.Groups()}
}

// Suggest merges local matches with the remote completions for partial.
// A failing remote service leaves the local matches.
func (s *Server) Suggest(ctx context.Context, partial string) (SuggestResponse, error) {
	clean, err := runner.SanitizeInput(partial)
	if err != nil {
		return SuggestResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	if strings.TrimSpace(clean) == "" {
		return SuggestResponse{Suggestions: []string{}}, nil
	}

	local := s.registry.Commands(clean, s.localLimit)
	if s.suggester == nil {
		return SuggestResponse{Suggestions: console.Merge(local, nil, s.totalLimit)}, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	remote, err := s.suggester.Suggest(reqCtx, clean)
	if err != nil {
		if ctx.Err() != nil {
			return SuggestResponse{}, ctx.Err()
		}
		s.logger.Warn("MCP suggest: Remote suggestions failed", "partial", clean, "err", err)
		return SuggestResponse{Suggestions: console.Merge(local, nil, s.totalLimit), RemoteFailed: true}, nil
	}
	return SuggestResponse{Suggestions: console.Merge(local, remote, s.totalLimit)}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: aiterm://commands
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Command Catalog",
		mcp.WithResourceDescription("Every command known to the console"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.registry.All())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
