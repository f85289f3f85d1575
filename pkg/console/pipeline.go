package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/ports"
)

// DefaultExecuteTimeout bounds a single execution when none is configured.
const DefaultExecuteTimeout = 30 * time.Second

var errNoExecutor = errors.New("no executor configured")

// Pipeline admits submissions one at a time and turns executor answers into transcript entries.
type Pipeline struct {
	store    *Store
	history  *HistoryNavigator
	executor ports.Executor
	timeout  time.Duration
	now      func() time.Time

	inflight string
}

// NewPipeline wires a pipeline to the store, the history and the remote executor.
func NewPipeline(store *Store, history *HistoryNavigator, executor ports.Executor, timeout time.Duration, now func() time.Time) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultExecuteTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Pipeline{store: store, history: history, executor: executor, timeout: timeout, now: now}
}

// Begin admits command: it echoes it into the transcript, records it in the history
// and raises the loading flag. It returns the trimmed command.
// Blank commands yield ErrEmptyCommand and submissions while loading yield ErrBusy;
// neither touches the state.
func (p *Pipeline) Begin(command string) (string, error) {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return "", domain.ErrEmptyCommand
	}
	if p.store.IsLoading() {
		return "", domain.ErrBusy
	}

	entry := domain.NewEntry(domain.EntryCommand, cmd, p.now())
	entry.Directory = p.store.Directory()
	p.store.Append(entry)
	p.history.RecordSubmission(cmd)
	p.store.setLoading(true)
	p.inflight = cmd
	return cmd, nil
}

// Run returns the Cmd that calls the executor under the configured timeout.
// Once issued, the call is not cancelled by user input.
func (p *Pipeline) Run(ctx context.Context, cmd string) Cmd {
	executor := p.executor
	timeout := p.timeout
	return func() Msg {
		start := time.Now()
		if executor == nil {
			return ExecutionResolved{Command: cmd, Err: errNoExecutor}
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := executor.Execute(ctx, domain.ExecuteRequest{Command: cmd})
		if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
			err = fmt.Errorf("%w after %s", domain.ErrTimeout, timeout)
		}
		return ExecutionResolved{Command: cmd, Response: resp, Err: err, Duration: time.Since(start)}
	}
}

// Resolve appends the result entries and clears the loading flag.
// It reports false for a resolution that does not match the in-flight command.
func (p *Pipeline) Resolve(res ExecutionResolved) bool {
	if !p.store.IsLoading() || res.Command != p.inflight {
		return false
	}
	defer func() {
		p.inflight = ""
		p.store.setLoading(false)
	}()

	now := p.now()
	if res.Err != nil {
		p.store.Append(domain.NewEntry(domain.EntryError, "Error: "+res.Err.Error(), now))
		return true
	}

	if note := res.Response.InterpretationText(); note != "" {
		p.store.Append(domain.NewEntry(domain.EntrySystem, note, now))
	}
	kind := domain.EntryOutput
	if !res.Response.Succeeded() {
		kind = domain.EntryError
	}
	p.store.Append(domain.NewEntry(kind, res.Response.Output, now))

	if res.Response.Directory != "" {
		p.store.SetDirectory(res.Response.Directory)
	}
	return true
}

// Inflight returns the command being executed, if any.
func (p *Pipeline) Inflight() (string, bool) {
	return p.inflight, p.store.IsLoading()
}
