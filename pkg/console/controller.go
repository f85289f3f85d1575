package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/ports"
	"github.com/aretw0/aiterm/pkg/registry"
)

// Controller is the session state machine.
// Update must be called from a single goroutine; Cmds may run anywhere.
type Controller struct {
	store    *Store
	history  *HistoryNavigator
	suggest  *Aggregator
	pipeline *Pipeline
	sched    *Scheduler

	suggester ports.Suggester
	status    ports.StatusProvider
	matcher   Matcher

	debounce       time.Duration
	executeTimeout time.Duration
	suggestTimeout time.Duration
	autocomplete   bool
	localLimit     int
	totalLimit     int
	directory      string
	sessionID      string
	snapshot       *domain.SessionState

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
	ctx    context.Context

	pendingLocal []string
	searchQuery  string
	searching    bool
	dirReported  bool
}

// New creates a controller that runs commands through executor.
func New(executor ports.Executor, opts ...Option) *Controller {
	c := &Controller{
		matcher:        registry.Default(),
		debounce:       DefaultDebounce,
		executeTimeout: DefaultExecuteTimeout,
		suggestTimeout: DefaultSuggestTimeout,
		autocomplete:   true,
		logger:         logging.NewNop(),
		now:            time.Now,
		ctx:            context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.snapshot != nil {
		c.store = RestoreStore(c.snapshot)
		if c.sessionID != "" {
			c.store.state.SessionID = c.sessionID
		}
		c.snapshot = nil
	} else {
		c.store = NewStore(c.sessionID, c.directory, c.now())
	}
	c.history = NewHistoryNavigator(c.store)
	c.suggest = NewAggregator(c.store, c.matcher, c.localLimit, c.totalLimit)
	c.pipeline = NewPipeline(c.store, c.history, executor, c.executeTimeout, c.now)
	c.sched = NewScheduler(c.ctx)
	return c
}

// SetContext sets the context under which Cmds perform I/O.
// Cancelling it aborts pending suggestion tasks and in-flight requests.
func (c *Controller) SetContext(ctx context.Context) {
	c.ctx = ctx
	c.sched.Rebase(ctx)
}

// Close cancels the pending suggestion task.
func (c *Controller) Close() {
	c.sched.Cancel()
}

// Init returns the Cmds to run when the session starts.
func (c *Controller) Init() []Cmd {
	if c.status == nil {
		return nil
	}
	provider := c.status
	ctx := c.ctx
	timeout := c.suggestTimeout
	return []Cmd{func() Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		st, err := provider.Status(ctx)
		return StatusResolved{Status: st, Err: err}
	}}
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() *domain.SessionState {
	return c.store.Snapshot()
}

// Store exposes the session store for read access.
func (c *Controller) Store() *Store {
	return c.store
}

// Update applies msg and returns the Cmds it requires.
func (c *Controller) Update(msg Msg) []Cmd {
	if isKeyEvent(msg) {
		if _, ok := msg.(SearchHistory); !ok {
			c.searching = false
		}
	}

	switch m := msg.(type) {
	case InputChanged:
		return c.onInput(m.Value)
	case Submit:
		return c.onSubmit()
	case KeyUp:
		if c.store.SuggestionsVisible() {
			c.MoveSelection(-1)
		} else {
			c.RecallPrevious()
		}
	case KeyDown:
		if c.store.SuggestionsVisible() {
			c.MoveSelection(1)
		} else {
			c.RecallNext()
		}
	case Accept:
		if c.store.SuggestionsVisible() {
			c.AcceptSelection()
		}
	case Dismiss:
		if c.store.SuggestionsVisible() {
			c.Dismiss()
		}
	case ClearScreen:
		c.Clear()
	case SearchHistory:
		c.onSearch()
	case SuggestionsDue:
		if !c.sched.Current(m.gen) {
			return nil
		}
		return c.fetch(c.sched.Context(), m.gen, m.Partial)
	case SuggestionsResolved:
		c.onSuggestions(m)
	case ExecutionResolved:
		c.onExecution(m)
	case StatusResolved:
		c.onStatus(m)
	case nil:
	default:
		c.logger.Debug("Ignoring unknown message", "type", fmt.Sprintf("%T", msg))
	}
	return nil
}

// Submit runs command through the execution pipeline.
// It is a no-op for blank commands and while another command is in flight.
func (c *Controller) Submit(command string) []Cmd {
	cmd, err := c.pipeline.Begin(command)
	if err != nil {
		c.logger.Debug("Submission refused", "command", command, "err", err)
		return nil
	}
	c.logger.Info("Command submitted", "session_id", c.store.SessionID(), "command", cmd)
	if c.hooks.OnSubmit != nil {
		c.hooks.OnSubmit(c.ctx, &domain.SubmitEvent{
			EventBase: c.event(domain.EventSubmit),
			Command:   cmd,
			Directory: c.store.Directory(),
		})
	}
	return []Cmd{c.pipeline.Run(c.ctx, cmd)}
}

// RequestSuggestions starts a suggestion request for partial right away.
// It supersedes any pending request; an empty partial just clears the list.
func (c *Controller) RequestSuggestions(partial string) []Cmd {
	if partial == "" || !c.autocomplete {
		c.sched.Cancel()
		c.suggest.Clear()
		return nil
	}
	gen, ctx := c.sched.Schedule()
	return c.fetch(ctx, gen, partial)
}

// MoveSelection moves the suggestion highlight by delta, wrapping.
func (c *Controller) MoveSelection(delta int) {
	c.suggest.MoveSelection(delta)
}

// AcceptSelection copies the highlighted suggestion into the input.
func (c *Controller) AcceptSelection() (string, bool) {
	c.sched.Cancel()
	return c.suggest.AcceptSelection()
}

// Dismiss hides the suggestion list.
func (c *Controller) Dismiss() {
	c.sched.Cancel()
	c.suggest.Dismiss()
}

// RecallPrevious loads the next older command into the input.
// A pending suggestion request for the replaced input is abandoned.
func (c *Controller) RecallPrevious() (string, bool) {
	cmd, moved := c.history.RecallPrevious()
	if moved {
		c.sched.Cancel()
	}
	return cmd, moved
}

// RecallNext loads the next newer command, or clears the input past the newest.
func (c *Controller) RecallNext() (string, bool) {
	cmd, moved := c.history.RecallNext()
	if moved {
		c.sched.Cancel()
	}
	return cmd, moved
}

// Clear empties the transcript.
func (c *Controller) Clear() {
	c.store.Clear()
}

func (c *Controller) onInput(value string) []Cmd {
	c.store.setInput(value)
	if value == "" || !c.autocomplete {
		c.sched.Cancel()
		c.suggest.Clear()
		return nil
	}
	if c.debounce <= 0 {
		return c.RequestSuggestions(value)
	}
	gen, ctx := c.sched.Schedule()
	return []Cmd{Delay(ctx, c.debounce, SuggestionsDue{gen: gen, Partial: value})}
}

func (c *Controller) onSubmit() []Cmd {
	cmds := c.Submit(c.store.Input())
	if cmds == nil {
		return nil
	}
	c.sched.Cancel()
	c.store.setInput("")
	c.suggest.Clear()
	return cmds
}

func (c *Controller) onSearch() {
	if !c.searching {
		c.searchQuery = c.store.Input()
		c.store.setCursor(-1)
		c.searching = true
	}
	if _, ok := c.history.Search(c.searchQuery); ok {
		c.sched.Cancel()
		c.suggest.Dismiss()
	}
}

// fetch shows local matches at once and asks the remote service for more.
func (c *Controller) fetch(ctx context.Context, gen uint64, partial string) []Cmd {
	local := c.suggest.Local(partial)
	c.pendingLocal = local
	c.suggest.Reset(local)

	if c.suggester == nil {
		c.emitSuggest(partial, len(local), 0, false, false)
		return nil
	}

	suggester := c.suggester
	timeout := c.suggestTimeout
	return []Cmd{func() Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		remote, err := suggester.Suggest(ctx, partial)
		return SuggestionsResolved{gen: gen, Partial: partial, Remote: remote, Err: err}
	}}
}

func (c *Controller) onSuggestions(m SuggestionsResolved) {
	if !c.sched.Current(m.gen) {
		c.logger.Debug("Discarding stale suggestions", "partial", m.Partial)
		c.emitSuggest(m.Partial, 0, len(m.Remote), m.Err != nil, true)
		return
	}

	if m.Err != nil {
		// Local matches are already on screen.
		c.logger.Debug("Remote suggestions failed", "partial", m.Partial, "err", m.Err)
		c.suggest.Show(c.pendingLocal)
		c.emitSuggest(m.Partial, len(c.pendingLocal), 0, true, false)
		return
	}

	merged := Merge(c.pendingLocal, m.Remote, c.suggest.totalLimit)
	c.suggest.Show(merged)
	c.emitSuggest(m.Partial, len(c.pendingLocal), len(m.Remote), false, false)
}

func (c *Controller) onExecution(m ExecutionResolved) {
	if !c.pipeline.Resolve(m) {
		c.logger.Warn("Ignoring unexpected execution result", "command", m.Command)
		return
	}
	if m.Err == nil && m.Response.Directory != "" {
		c.dirReported = true
	}

	if m.Err != nil {
		c.logger.Warn("Command failed", "session_id", c.store.SessionID(), "command", m.Command, "err", m.Err)
	} else {
		c.logger.Info("Command finished", "session_id", c.store.SessionID(), "command", m.Command,
			"exit_code", m.Response.ExitCode, "duration", m.Duration)
	}

	if c.hooks.OnResult != nil {
		c.hooks.OnResult(c.ctx, &domain.ResultEvent{
			EventBase:       c.event(domain.EventResult),
			Command:         m.Command,
			ExitCode:        m.Response.ExitCode,
			NaturalLanguage: m.Response.IsNaturalLanguage,
			Duration:        m.Duration,
			Err:             m.Err,
		})
	}
}

func (c *Controller) onStatus(m StatusResolved) {
	if m.Err != nil {
		c.logger.Warn("Failed to fetch executor status", "err", m.Err)
		return
	}
	// A directory reported by an execution is newer than the status snapshot.
	if c.dirReported || m.Status.CurrentDirectory == "" {
		return
	}
	c.store.SetDirectory(m.Status.CurrentDirectory)
}

func (c *Controller) emitSuggest(partial string, local, remote int, failed, stale bool) {
	if c.hooks.OnSuggest == nil {
		return
	}
	c.hooks.OnSuggest(c.ctx, &domain.SuggestEvent{
		EventBase: c.event(domain.EventSuggest),
		Partial:   partial,
		Local:     local,
		Remote:    remote,
		Failed:    failed,
		Stale:     stale,
	})
}

func isKeyEvent(msg Msg) bool {
	switch msg.(type) {
	case InputChanged, Submit, KeyUp, KeyDown, Accept, Dismiss, ClearScreen, SearchHistory:
		return true
	}
	return false
}

func (c *Controller) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: c.now(), Type: t, SessionID: c.store.SessionID()}
}

// IsRefused reports whether err is an admission-control refusal rather than a failure.
func IsRefused(err error) bool {
	return errors.Is(err, domain.ErrEmptyCommand) || errors.Is(err, domain.ErrBusy)
}
