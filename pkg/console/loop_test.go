package console_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/aiterm/internal/testutils"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startLoop runs l in the background and stops it when the test ends.
func startLoop(t *testing.T, l *console.Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Error("loop did not stop")
		}
	})
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestLoop_SubmitAndResolve(t *testing.T) {
	exec := testutils.NewFakeExecutor().On("pwd", domain.ExecuteResponse{Output: "/home", Directory: "/home"})
	l := console.NewLoop(newController(exec))
	startLoop(t, l)
	ctx := waitCtx(t)

	require.NoError(t, l.Dispatch(ctx, console.InputChanged{Value: "pwd"}))
	require.NoError(t, l.Dispatch(ctx, console.Submit{}))

	st, err := l.WaitFor(ctx, func(s *domain.SessionState) bool {
		return len(s.Transcript) == 4 && !s.IsLoading
	})
	require.NoError(t, err)
	assert.Equal(t, "/home", st.CurrentDirectory)
	assert.Equal(t, "/home", st.Transcript[3].Text)
	assert.Empty(t, st.Input)
}

func TestLoop_BusyWhileExecuting(t *testing.T) {
	exec := testutils.NewFakeExecutor()
	exec.Hold()
	l := console.NewLoop(newController(exec))
	startLoop(t, l)
	ctx := waitCtx(t)

	require.NoError(t, l.Dispatch(ctx, console.InputChanged{Value: "build"}))
	require.NoError(t, l.Dispatch(ctx, console.Submit{}))
	select {
	case <-exec.Started():
	case <-ctx.Done():
		t.Fatal("execution never started")
	}

	require.NoError(t, l.Dispatch(ctx, console.InputChanged{Value: "test"}))
	require.NoError(t, l.Dispatch(ctx, console.Submit{}))
	st, err := l.WaitFor(ctx, func(s *domain.SessionState) bool { return s.Input == "test" })
	require.NoError(t, err)
	assert.True(t, st.IsLoading)
	assert.Equal(t, []string{"build"}, st.SubmittedHistory)

	exec.Release()
	st, err = l.WaitFor(ctx, func(s *domain.SessionState) bool { return !s.IsLoading })
	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, exec.Calls())
	assert.Equal(t, "test", st.Input, "the refused input is still there to resubmit")
}

func TestLoop_Subscribe(t *testing.T) {
	l := console.NewLoop(newController(testutils.NewFakeExecutor()))
	diffs, unsubscribe := l.Subscribe()
	defer unsubscribe()
	startLoop(t, l)
	ctx := waitCtx(t)

	require.NoError(t, l.Dispatch(ctx, console.InputChanged{Value: "zz"}))

	select {
	case d := <-diffs:
		require.NotNil(t, d.Input)
		assert.Equal(t, "zz", *d.Input)
		assert.Nil(t, d.IsLoading)
	case <-ctx.Done():
		t.Fatal("no diff received")
	}
}

func TestLoop_Observer(t *testing.T) {
	var mu sync.Mutex
	var dirs []string
	exec := testutils.NewFakeExecutor().On("cd /a", domain.ExecuteResponse{Directory: "/a"})
	l := console.NewLoop(newController(exec), console.WithObserver(func(prev, next *domain.SessionState, diff *domain.StateDiff) {
		if diff.CurrentDirectory != nil {
			mu.Lock()
			dirs = append(dirs, *diff.CurrentDirectory)
			mu.Unlock()
		}
	}))
	startLoop(t, l)
	ctx := waitCtx(t)

	require.NoError(t, l.Dispatch(ctx, console.InputChanged{Value: "cd /a"}))
	require.NoError(t, l.Dispatch(ctx, console.Submit{}))
	_, err := l.WaitFor(ctx, func(s *domain.SessionState) bool { return s.CurrentDirectory == "/a" })
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/a"}, dirs)
}

func TestLoop_InitStatus(t *testing.T) {
	ctrl := newController(testutils.NewFakeExecutor(),
		console.WithStatusProvider(testutils.FakeStatus{Result: domain.Status{CurrentDirectory: "/root"}}))
	l := console.NewLoop(ctrl)
	startLoop(t, l)

	st, err := l.WaitFor(waitCtx(t), func(s *domain.SessionState) bool { return s.CurrentDirectory == "/root" })
	require.NoError(t, err)
	assert.Len(t, st.Transcript, 2)
}

func TestLoop_DebouncedSuggestions(t *testing.T) {
	sugg := testutils.NewFakeSuggester(map[string][]string{"git": {"git stash"}})
	ctrl := newController(testutils.NewFakeExecutor(),
		console.WithSuggester(sugg),
		console.WithMatcher(gitMatcher()),
		console.WithDebounce(20*time.Millisecond),
	)
	l := console.NewLoop(ctrl)
	startLoop(t, l)
	ctx := waitCtx(t)

	for _, v := range []string{"g", "gi", "git"} {
		require.NoError(t, l.Dispatch(ctx, console.InputChanged{Value: v}))
	}

	st, err := l.WaitFor(ctx, func(s *domain.SessionState) bool { return len(s.Suggestions) == 3 })
	require.NoError(t, err)
	assert.Equal(t, []string{"git add", "git status", "git stash"}, st.Suggestions)
	assert.Equal(t, []string{"git"}, sugg.Calls(), "only the last keystroke reaches the server")
}

func TestLoop_ShutdownAbortsExecution(t *testing.T) {
	exec := testutils.NewFakeExecutor()
	exec.Hold()
	defer exec.Release()

	l := console.NewLoop(newController(exec))
	diffs, _ := l.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.NoError(t, l.Dispatch(ctx, console.Submit{}))
	require.NoError(t, l.Dispatch(ctx, console.InputChanged{Value: "sleep"}))
	require.NoError(t, l.Dispatch(ctx, console.Submit{}))
	<-exec.Started()
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	for range diffs {
		// drained until closed
	}
	assert.ErrorIs(t, l.Dispatch(context.Background(), console.Submit{}), console.ErrLoopStopped)
}

func TestLoop_RunTwice(t *testing.T) {
	l := console.NewLoop(newController(testutils.NewFakeExecutor()))
	startLoop(t, l)
	ctx := waitCtx(t)
	require.NoError(t, l.Dispatch(ctx, console.ClearScreen{}))
	_, err := l.WaitFor(ctx, func(s *domain.SessionState) bool { return s.Clears == 1 })
	require.NoError(t, err)

	assert.Error(t, l.Run(context.Background()))
}

func TestLoop_Send(t *testing.T) {
	l := console.NewLoop(newController(testutils.NewFakeExecutor(), console.WithMatcher(gitMatcher())))
	startLoop(t, l)
	ctx := waitCtx(t)

	st, err := l.Send(ctx, console.InputChanged{Value: "git"})
	require.NoError(t, err)
	assert.Equal(t, "git", st.Input)
	assert.True(t, st.SuggestionsVisible, "the returned state already reflects the event")

	st, err = l.Send(ctx, console.Dismiss{})
	require.NoError(t, err)
	assert.False(t, st.SuggestionsVisible)
}
