package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/observability"
	"github.com/aretw0/aiterm/pkg/session"
)

// ErrInvalidSessionID is returned for IDs that are unsafe as storage keys.
var ErrInvalidSessionID = errors.New("invalid session id")

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ControllerFactory builds the controller for a session from its stored snapshot.
type ControllerFactory func(sessionID string, snapshot *domain.SessionState) *console.Controller

type liveSession struct {
	loop   *console.Loop
	cancel context.CancelFunc
	done   chan struct{}
}

// Hub runs one console loop per open session. State changes are persisted
// through the session manager and broadcast to SSE subscribers.
type Hub struct {
	factory   ControllerFactory
	manager   *session.Manager
	Streams   *DiffFeed
	metrics   *observability.Metrics
	logger    *slog.Logger
	directory string
	saveLimit time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// HubOption configures the Hub.
type HubOption func(*Hub)

// WithHubLogger configures a logger for the Hub.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithMetrics tracks open sessions on m.ActiveSessions.
func WithMetrics(m *observability.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

// WithStartDirectory sets the working directory of new sessions.
func WithStartDirectory(dir string) HubOption {
	return func(h *Hub) {
		h.directory = dir
	}
}

// NewHub creates a hub persisting through manager.
func NewHub(factory ControllerFactory, manager *session.Manager, opts ...HubOption) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		factory:   factory,
		manager:   manager,
		Streams:   NewDiffFeed(),
		logger:    logging.NewNop(),
		directory: domain.DefaultDirectory,
		saveLimit: 5 * time.Second,
		ctx:       ctx,
		cancel:    cancel,
		sessions:  make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Streams.logger = h.logger
	return h
}

// ValidSessionID reports whether id can be used as a session key.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Open returns the running loop for id, resuming it from the store if needed.
// With create set, unknown sessions are started; otherwise they yield ErrSessionNotFound.
func (h *Hub) Open(ctx context.Context, id string, create bool) (*console.Loop, error) {
	if !ValidSessionID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[id]; ok {
		return s.loop, nil
	}
	if h.ctx.Err() != nil {
		return nil, console.ErrLoopStopped
	}

	var (
		snapshot *domain.SessionState
		err      error
	)
	if create {
		snapshot, _, err = h.manager.LoadOrStart(ctx, id, func() *domain.SessionState {
			return domain.NewSessionState(id, h.directory, time.Now())
		})
	} else {
		snapshot, err = h.manager.Load(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	loop := console.NewLoop(h.factory(id, snapshot), console.WithObserver(h.observe(id)))
	runCtx, cancel := context.WithCancel(h.ctx)
	s := &liveSession{loop: loop, cancel: cancel, done: make(chan struct{})}
	h.sessions[id] = s
	if h.metrics != nil {
		h.metrics.ActiveSessions.Inc()
	}

	go func() {
		defer close(s.done)
		if err := loop.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Error("Session loop failed", "session_id", id, "err", err)
		}
	}()
	h.logger.Info("Session opened", "session_id", id)
	return loop, nil
}

// Delete stops the session and removes its snapshot.
func (h *Hub) Delete(ctx context.Context, id string) error {
	if !ValidSessionID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	h.stop(id)
	return h.manager.Delete(ctx, id)
}

// List returns the persisted session IDs.
func (h *Hub) List(ctx context.Context) ([]string, error) {
	return h.manager.List(ctx)
}

// Live reports how many sessions have a running loop.
func (h *Hub) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close stops every session and waits for their loops to exit.
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.stop(id)
	}
}

func (h *Hub) stop(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		return
	}

	s.cancel()
	<-s.done
	h.Streams.Close(id)
	if h.metrics != nil {
		h.metrics.ActiveSessions.Dec()
	}
	h.logger.Info("Session closed", "session_id", id)
}

// observe persists durable changes and fans every diff out to SSE clients.
func (h *Hub) observe(id string) console.Observer {
	return func(prev, next *domain.SessionState, diff *domain.StateDiff) {
		if durable(diff) {
			ctx, cancel := context.WithTimeout(context.Background(), h.saveLimit)
			if err := h.manager.Save(ctx, id, next); err != nil {
				h.logger.Warn("Failed to persist session", "session_id", id, "err", err)
			}
			cancel()
		}
		h.Streams.Publish(id, diff)
	}
}

// durable reports whether diff touches state worth persisting.
// Keystrokes and suggestion churn are not.
func durable(d *domain.StateDiff) bool {
	return d.Reset || len(d.Appended) > 0 || d.CurrentDirectory != nil || d.IsLoading != nil ||
		(d.History != nil && len(d.History.Appended) > 0)
}
