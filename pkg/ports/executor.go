package ports

import (
	"context"

	"github.com/aretw0/aiterm/pkg/domain"
)

// Executor runs commands on behalf of the console.
// Implementations must honour ctx cancellation; the controller relies on it for timeouts.
type Executor interface {
	Execute(ctx context.Context, req domain.ExecuteRequest) (domain.ExecuteResponse, error)
}

// Suggester returns completions for a partial command.
type Suggester interface {
	Suggest(ctx context.Context, partial string) ([]string, error)
}

// StatusProvider reports the executor's current view of the terminal.
type StatusProvider interface {
	Status(ctx context.Context) (domain.Status, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req domain.ExecuteRequest) (domain.ExecuteResponse, error)

// Execute calls f(ctx, req).
func (f ExecutorFunc) Execute(ctx context.Context, req domain.ExecuteRequest) (domain.ExecuteResponse, error) {
	return f(ctx, req)
}

// SuggesterFunc adapts a function to the Suggester interface.
type SuggesterFunc func(ctx context.Context, partial string) ([]string, error)

// Suggest calls f(ctx, partial).
func (f SuggesterFunc) Suggest(ctx context.Context, partial string) ([]string, error) {
	return f(ctx, partial)
}
