package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/aiterm/internal/config"
	"github.com/aretw0/aiterm/internal/logging"
	aitermhttp "github.com/aretw0/aiterm/pkg/adapters/http"
	"github.com/aretw0/aiterm/pkg/adapters/file"
	"github.com/aretw0/aiterm/pkg/adapters/memory"
	"github.com/aretw0/aiterm/pkg/adapters/redis"
	"github.com/aretw0/aiterm/pkg/adapters/remote"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/observability"
	"github.com/aretw0/aiterm/pkg/persistence/middleware"
	"github.com/aretw0/aiterm/pkg/ports"
	"github.com/aretw0/aiterm/pkg/registry"
	"github.com/aretw0/aiterm/pkg/runner"
	"github.com/aretw0/aiterm/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ErrNoSessionStore is returned by session commands when no shared store is configured.
var ErrNoSessionStore = errors.New("session commands need a persistent store (--redis or --session-dir)")

// Stack is the set of collaborators every command is built from.
type Stack struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   *remote.Client
	Registry *registry.Registry
	Manager  *session.Manager
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer

	executor ports.Executor
	shared   bool
	closers  []func() error
}

// StackOption configures the Stack.
type StackOption func(*Stack)

// WithExecutor replaces the HTTP client as the command executor.
func WithExecutor(e ports.Executor) StackOption {
	return func(s *Stack) {
		s.executor = e
	}
}

// NewStack wires the remote client, catalog, session store and metrics from cfg.
func NewStack(cfg *config.Config, logger *slog.Logger, opts ...StackOption) (*Stack, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Stack{Config: cfg, Logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	s.Client = remote.New(cfg.APIURL,
		remote.WithPaths(cfg.ExecutePath, cfg.SuggestPath, cfg.StatusPath),
		remote.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		remote.WithRetries(cfg.SuggestRetries, 100*time.Millisecond, time.Second),
		remote.WithLogger(logger),
	)
	if s.executor == nil {
		s.executor = s.Client
	}

	s.Registry = registry.Default()
	if cfg.Catalog != "" {
		reg, err := registry.LoadFile(cfg.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load command catalog: %w", err)
		}
		s.Registry = reg
		logger.Info("Command catalog loaded", "path", cfg.Catalog, "commands", reg.Len())
	}

	var (
		store   ports.SnapshotStore = memory.NewStore()
		mgrOpts                     = []session.Option{session.WithLogger(logger)}
	)
	switch {
	case cfg.RedisURL != "":
		rs, err := redis.NewFromURL(cfg.RedisURL, redis.WithTTL(cfg.SessionTTL))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, rs.Close)
		store = rs
		mgrOpts = append(mgrOpts, session.WithLocker(redis.NewLocker(rs.Client(), rs.Prefix())))
		s.shared = true
	case cfg.SessionDir != "":
		store = file.New(cfg.SessionDir)
		s.shared = true
	}

	mws, err := storeMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	store = middleware.Wrap(store, mws...)
	s.Manager = session.NewManager(store, mgrOpts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.Metrics = observability.NewMetrics(reg)
	s.Gatherer = reg
	return s, nil
}

func storeMiddleware(cfg *config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.Redact {
		patterns := cfg.RedactPatterns
		if len(patterns) == 0 {
			patterns = middleware.DefaultRedactPatterns
		}
		mw, err := middleware.NewRedactionMiddleware(patterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

// Shared reports whether sessions outlive the process.
func (s *Stack) Shared() bool {
	return s.shared
}

// Prompt returns the configured prompt identity.
func (s *Stack) Prompt() runner.Prompt {
	return runner.Prompt{User: s.Config.User, Host: s.Config.Host}
}

// ControllerOptions translates the configuration into controller options.
func (s *Stack) ControllerOptions() []console.Option {
	hooks := observability.Chain(observability.LogHooks(s.Logger), s.Metrics.Hooks())
	opts := []console.Option{
		console.WithMatcher(s.Registry),
		console.WithLogger(s.Logger),
		console.WithLifecycleHooks(hooks),
		console.WithDebounce(s.Config.Debounce),
		console.WithExecuteTimeout(s.Config.ExecuteTimeout),
		console.WithSuggestTimeout(s.Config.SuggestTimeout),
		console.WithAutocomplete(s.Config.Autocomplete),
		console.WithDirectory(s.Config.Directory),
	}
	if sg, ok := s.executor.(ports.Suggester); ok {
		opts = append(opts, console.WithSuggester(sg))
	}
	if sp, ok := s.executor.(ports.StatusProvider); ok {
		opts = append(opts, console.WithStatusProvider(sp))
	}
	return opts
}

// NewController builds a controller for sessionID, resumed from snapshot when it is non-nil.
func (s *Stack) NewController(sessionID string, snapshot *domain.SessionState) *console.Controller {
	opts := append(s.ControllerOptions(), console.WithSessionID(sessionID))
	if snapshot != nil {
		opts = append(opts, console.WithSnapshot(snapshot))
	}
	return console.New(s.executor, opts...)
}

// Hub creates the session hub served over HTTP.
func (s *Stack) Hub() *aitermhttp.Hub {
	return aitermhttp.NewHub(s.NewController, s.Manager,
		aitermhttp.WithHubLogger(s.Logger),
		aitermhttp.WithMetrics(s.Metrics),
		aitermhttp.WithStartDirectory(s.Config.Directory),
	)
}

// Close releases the connections opened by NewStack.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
