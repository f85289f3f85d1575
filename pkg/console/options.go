package console

import (
	"log/slog"
	"time"

	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/ports"
)

// DefaultDebounce is the pause after the last keystroke before suggestions are requested.
const DefaultDebounce = 300 * time.Millisecond

// DefaultSuggestTimeout bounds a remote suggestion request.
const DefaultSuggestTimeout = 5 * time.Second

// Option configures the Controller.
type Option func(*Controller)

// WithSuggester enables remote completions.
func WithSuggester(s ports.Suggester) Option {
	return func(c *Controller) {
		c.suggester = s
	}
}

// WithStatusProvider fetches the executor's working directory at session start.
func WithStatusProvider(p ports.StatusProvider) Option {
	return func(c *Controller) {
		c.status = p
	}
}

// WithMatcher replaces the local completion source (default: the built-in registry).
func WithMatcher(m Matcher) Option {
	return func(c *Controller) {
		c.matcher = m
	}
}

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithDebounce sets the suggestion debounce delay. Zero requests on every keystroke.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debounce = d
	}
}

// WithExecuteTimeout bounds each execution.
func WithExecuteTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.executeTimeout = d
	}
}

// WithSuggestTimeout bounds each remote suggestion request.
func WithSuggestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.suggestTimeout = d
	}
}

// WithAutocomplete toggles suggestions altogether.
func WithAutocomplete(enabled bool) Option {
	return func(c *Controller) {
		c.autocomplete = enabled
	}
}

// WithLimits overrides the local and total suggestion caps.
func WithLimits(local, total int) Option {
	return func(c *Controller) {
		c.localLimit = local
		c.totalLimit = total
	}
}

// WithDirectory sets the initial working directory.
func WithDirectory(dir string) Option {
	return func(c *Controller) {
		c.directory = dir
	}
}

// WithSessionID tags snapshots and events with id.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.sessionID = id
	}
}

// WithSnapshot resumes a persisted session instead of starting a new one.
func WithSnapshot(snapshot *domain.SessionState) Option {
	return func(c *Controller) {
		c.snapshot = snapshot
	}
}

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}
