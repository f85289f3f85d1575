package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
)

// Goodbye is printed when the session ends.
const Goodbye = "Goodbye!"

// Runner drives a console loop from line-oriented input.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on stdin/stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	signals bool
	exits   map[string]struct{}
	goodbye string
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		signals: true,
		exits:   map[string]struct{}{"exit": {}, "quit": {}},
		goodbye: Goodbye,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run starts loop and feeds it one command per input line until EOF, an exit
// command or until ctx is cancelled. The loop is stopped before Run returns.
func (r *Runner) Run(ctx context.Context, loop *console.Loop) error {
	if r.signals {
		signals := NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(loopCtx) }()
	defer func() {
		stopLoop()
		if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
			r.Logger.Error("Console loop failed", "err", err)
		}
	}()

	p := &printer{handler: r.Handler}
	if err := p.flush(ctx, loop.State()); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for {
		line, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return r.farewell(ctx)
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		clean, err := SanitizeInput(line)
		if err != nil {
			r.Logger.Warn("Input rejected", "err", err, "size", len(line))
			if err := r.Handler.SystemOutput(ctx, "Error: "+err.Error()); err != nil {
				return err
			}
			continue
		}

		cmd := strings.TrimSpace(clean)
		if _, ok := r.exits[strings.ToLower(cmd)]; ok && cmd != "" {
			return r.farewell(ctx)
		}

		var st *domain.SessionState
		switch strings.ToLower(cmd) {
		case "":
			continue
		case "clear":
			st, err = loop.Send(ctx, console.ClearScreen{})
		default:
			st, err = r.submit(ctx, loop, cmd)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := p.flush(ctx, st); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

func (r *Runner) farewell(ctx context.Context) error {
	if r.goodbye == "" {
		return nil
	}
	return r.Handler.SystemOutput(ctx, r.goodbye)
}

// submit executes cmd and waits until its result is in the transcript.
func (r *Runner) submit(ctx context.Context, loop *console.Loop, cmd string) (*domain.SessionState, error) {
	r.Logger.Debug("Submitting command", "command", cmd)
	if _, err := loop.Send(ctx, console.InputChanged{Value: cmd}); err != nil {
		return nil, err
	}
	st, err := loop.Send(ctx, console.Submit{})
	if err != nil {
		return nil, err
	}
	if !st.IsLoading {
		return st, nil
	}
	return loop.WaitFor(ctx, func(st *domain.SessionState) bool { return !st.IsLoading })
}

// printer writes the transcript entries appended since the last flush.
type printer struct {
	handler IOHandler
	printed int
	clears  int
}

func (p *printer) flush(ctx context.Context, st *domain.SessionState) error {
	if st.Clears != p.clears {
		p.clears = st.Clears
		p.printed = 0
	}
	if p.printed > len(st.Transcript) {
		p.printed = len(st.Transcript)
	}
	entries := st.Transcript[p.printed:]
	p.printed = len(st.Transcript)
	if len(entries) == 0 {
		return nil
	}
	return p.handler.Output(ctx, entries)
}
