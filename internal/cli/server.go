package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	aitermhttp "github.com/aretw0/aiterm/pkg/adapters/http"
	"github.com/aretw0/aiterm/pkg/adapters/mcp"
)

// RunServer listens on addr and serves the session API until ctx is cancelled.
func RunServer(ctx context.Context, stack *Stack, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, stack, ln)
}

// Serve serves the session API on ln. On cancellation it drains in-flight
// requests for up to aitermhttp.ShutdownTimeout and stops every live session.
func Serve(ctx context.Context, stack *Stack, ln net.Listener) error {
	hub := stack.Hub()
	defer hub.Close()

	srv := &http.Server{
		Handler: aitermhttp.NewHandler(hub,
			aitermhttp.WithRegistry(stack.Registry),
			aitermhttp.WithGatherer(stack.Gatherer),
			aitermhttp.WithLogger(stack.Logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		stack.Logger.Info("Server listening", "addr", ln.Addr().String(), "api_url", stack.Config.APIURL)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	stack.Logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), aitermhttp.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		stack.Logger.Warn("Graceful shutdown did not complete", "timeout", aitermhttp.ShutdownTimeout, "err", err)
		if err := srv.Close(); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
	}
	stack.Logger.Info("Server stopped")
	return nil
}

// Transports accepted by RunMCP.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// NewMCPServer exposes the command catalog and suggestions as MCP tools.
func NewMCPServer(stack *Stack) *mcp.Server {
	return mcp.NewServer(stack.Registry,
		mcp.WithSuggester(stack.Client),
		mcp.WithSuggestTimeout(stack.Config.SuggestTimeout),
		mcp.WithLogger(stack.Logger),
	)
}

// RunMCP serves the MCP server over the given transport.
func RunMCP(ctx context.Context, stack *Stack, transport string, port int) error {
	srv := NewMCPServer(stack)
	switch transport {
	case TransportStdio:
		stack.Logger.Info("Starting MCP server", "transport", transport)
		return srv.ServeStdio()
	case TransportSSE:
		stack.Logger.Info("Starting MCP server", "transport", transport, "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport %q (supported: %s, %s)", transport, TransportStdio, TransportSSE)
	}
}
