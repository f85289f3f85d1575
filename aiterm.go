package aiterm

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/adapters/remote"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/ports"
)

// Console is the high-level entry point of the library.
// It wires a console.Controller to an executor and drives it with a console.Loop.
type Console struct {
	loop   *console.Loop
	ctrl   *console.Controller
	logger *slog.Logger
}

type settings struct {
	executor   ports.Executor
	suggester  ports.Suggester
	status     ports.StatusProvider
	remoteOpts []remote.Option
	ctrlOpts   []console.Option
	loopOpts   []console.LoopOption
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Console.
type Option func(*settings)

// WithExecutor replaces the HTTP executor. Suggestions and status are then
// taken from the executor when it implements ports.Suggester or ports.StatusProvider.
func WithExecutor(e ports.Executor) Option {
	return func(s *settings) {
		s.executor = e
	}
}

// WithRemoteOptions configures the HTTP client built from the API URL.
func WithRemoteOptions(opts ...remote.Option) Option {
	return func(s *settings) {
		s.remoteOpts = append(s.remoteOpts, opts...)
	}
}

// WithControllerOptions passes options through to the controller.
func WithControllerOptions(opts ...console.Option) Option {
	return func(s *settings) {
		s.ctrlOpts = append(s.ctrlOpts, opts...)
	}
}

// WithObserver registers a callback for state changes.
func WithObserver(o console.Observer) Option {
	return func(s *settings) {
		s.loopOpts = append(s.loopOpts, console.WithObserver(o))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

// WithLogger sets a structured logger for the console and its HTTP client.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New creates a Console talking to the executor at apiURL.
// apiURL may be empty when WithExecutor is given.
func New(apiURL string, opts ...Option) (*Console, error) {
	s := &settings{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if s.executor == nil {
		if strings.TrimSpace(apiURL) == "" {
			return nil, errors.New("aiterm: an API URL or an executor is required")
		}
		client := remote.New(apiURL, append([]remote.Option{remote.WithLogger(s.logger)}, s.remoteOpts...)...)
		s.executor = client
	}
	if sg, ok := s.executor.(ports.Suggester); ok {
		s.suggester = sg
	}
	if sp, ok := s.executor.(ports.StatusProvider); ok {
		s.status = sp
	}

	ctrlOpts := []console.Option{
		console.WithLogger(s.logger),
		console.WithLifecycleHooks(s.hooks),
	}
	if s.suggester != nil {
		ctrlOpts = append(ctrlOpts, console.WithSuggester(s.suggester))
	}
	if s.status != nil {
		ctrlOpts = append(ctrlOpts, console.WithStatusProvider(s.status))
	}
	ctrlOpts = append(ctrlOpts, s.ctrlOpts...)

	ctrl := console.New(s.executor, ctrlOpts...)
	return &Console{
		loop:   console.NewLoop(ctrl, s.loopOpts...),
		ctrl:   ctrl,
		logger: s.logger,
	}, nil
}

// Run drives the session until ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.logger.Debug("Console started", "session_id", c.loop.State().SessionID)
	err := c.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Dispatch queues a user event.
func (c *Console) Dispatch(ctx context.Context, msg console.Msg) error {
	return c.loop.Dispatch(ctx, msg)
}

// Send applies a user event and returns the resulting state.
func (c *Console) Send(ctx context.Context, msg console.Msg) (*domain.SessionState, error) {
	return c.loop.Send(ctx, msg)
}

// Exec submits command and waits for its transcript entries.
func (c *Console) Exec(ctx context.Context, command string) (*domain.SessionState, error) {
	if _, err := c.loop.Send(ctx, console.InputChanged{Value: command}); err != nil {
		return nil, err
	}
	st, err := c.loop.Send(ctx, console.Submit{})
	if err != nil {
		return nil, err
	}
	if !st.IsLoading {
		return st, nil
	}
	return c.loop.WaitFor(ctx, func(st *domain.SessionState) bool { return !st.IsLoading })
}

// State returns the latest session snapshot.
func (c *Console) State() *domain.SessionState {
	return c.loop.State()
}

// Subscribe returns a channel of state diffs.
func (c *Console) Subscribe() (<-chan *domain.StateDiff, func()) {
	return c.loop.Subscribe()
}

// Loop exposes the underlying event loop.
func (c *Console) Loop() *console.Loop {
	return c.loop
}
