package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/aiterm"
	"github.com/aretw0/aiterm/internal/presentation/tui"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/runner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ConsoleOptions contains the configuration for the run command.
type ConsoleOptions struct {
	// SessionID names a persisted session to resume. Empty starts an anonymous one.
	SessionID string
	// Plain forces the line-oriented runner even on a terminal.
	Plain bool
	// JSON switches the line runner to JSON lines.
	JSON bool

	Stdin  io.Reader
	Stdout io.Writer
}

// Interactive reports whether the full-screen UI can be used for opts.
func Interactive(opts ConsoleOptions) bool {
	if opts.Plain || opts.JSON {
		return false
	}
	in, ok := opts.Stdin.(*os.File)
	if opts.Stdin != nil && !ok {
		return false
	}
	out, ok := opts.Stdout.(*os.File)
	if opts.Stdout != nil && !ok {
		return false
	}
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
}

// RunConsole runs one console session until the user quits or ctx is cancelled.
func RunConsole(ctx context.Context, stack *Stack, opts ConsoleOptions) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	id, snapshot, err := restore(ctx, stack, opts.SessionID)
	if err != nil {
		return err
	}
	ctrl := stack.NewController(id, snapshot)

	var final *domain.SessionState
	if Interactive(opts) {
		final, err = runTUI(ctx, stack, ctrl)
	} else {
		final, err = runLines(ctx, stack, ctrl, opts)
	}
	if err != nil {
		return err
	}
	return persist(stack, opts.SessionID, final)
}

func runTUI(ctx context.Context, stack *Stack, ctrl *console.Controller) (*domain.SessionState, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctrl.SetContext(ctx)
	defer ctrl.Close()

	model := tui.NewModel(ctrl,
		tui.WithTheme(stack.Config.Theme),
		tui.WithPrompt(stack.Prompt()),
		tui.WithTimestamps(stack.Config.ShowTimestamps),
		tui.WithRenderer(tui.NewRenderer(stack.Config.Theme, 0)),
	)
	prog := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, fmt.Errorf("console UI failed: %w", err)
	}
	return ctrl.Snapshot(), nil
}

func runLines(ctx context.Context, stack *Stack, ctrl *console.Controller, opts ConsoleOptions) (*domain.SessionState, error) {
	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	} else {
		if f, ok := opts.Stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			tui.PrintBanner(opts.Stdout, aiterm.Version)
		}
		handler = runner.NewTextHandler(opts.Stdin, opts.Stdout,
			runner.WithPrompt(stack.Prompt()),
			runner.WithTimestamps(stack.Config.ShowTimestamps),
		)
	}

	loop := console.NewLoop(ctrl)
	r := runner.NewRunner(
		runner.WithLogger(stack.Logger),
		runner.WithInputHandler(handler),
	)
	if err := r.Run(ctx, loop); err != nil {
		return nil, err
	}
	return loop.State(), nil
}

// restore loads the named session, or starts a fresh one when it does not exist yet.
func restore(ctx context.Context, stack *Stack, sessionID string) (string, *domain.SessionState, error) {
	if sessionID == "" {
		return "", nil, nil
	}
	snapshot, created, err := stack.Manager.LoadOrStart(ctx, sessionID, func() *domain.SessionState {
		return domain.NewSessionState(sessionID, stack.Config.Directory, time.Now())
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}
	if created {
		stack.Logger.Info("Session created", "session_id", sessionID)
	} else {
		stack.Logger.Info("Session resumed", "session_id", sessionID, "entries", len(snapshot.Transcript))
	}
	return sessionID, withoutHistory(snapshot), nil
}

// withoutHistory drops the submitted commands. A named console session resumes
// its transcript and directory, but history navigation starts empty each run.
func withoutHistory(st *domain.SessionState) *domain.SessionState {
	st = st.Clone()
	st.SubmittedHistory = []string{}
	st.HistoryCursor = -1
	return st
}

func persist(stack *Stack, sessionID string, state *domain.SessionState) error {
	if sessionID == "" || state == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := stack.Manager.Save(ctx, sessionID, withoutHistory(state)); err != nil {
		return fmt.Errorf("failed to save session %q: %w", sessionID, err)
	}
	return nil
}
