package runner

import (
	"log/slog"
	"strings"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSignals makes Run stop on SIGINT/SIGTERM (default true).
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.signals = enabled
	}
}

// WithExitCommands replaces the words that end the session (default "exit" and "quit").
// Matching ignores case.
func WithExitCommands(words ...string) Option {
	return func(r *Runner) {
		r.exits = make(map[string]struct{}, len(words))
		for _, w := range words {
			r.exits[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
		}
	}
}

// WithGoodbye sets the line printed when the session ends. Empty prints nothing.
func WithGoodbye(msg string) Option {
	return func(r *Runner) {
		r.goodbye = msg
	}
}
