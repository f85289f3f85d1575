package console_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/aiterm/internal/testutils"
	"github.com/aretw0/aiterm/pkg/console"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/ports"
	"github.com/aretw0/aiterm/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return epoch }

func newController(exec ports.Executor, opts ...console.Option) *console.Controller {
	base := []console.Option{console.WithDebounce(0), console.WithClock(fixedClock)}
	return console.New(exec, append(base, opts...)...)
}

// drain runs cmds synchronously, feeding every result back into the controller.
func drain(c *console.Controller, cmds []console.Cmd) {
	for len(cmds) > 0 {
		cmd := cmds[0]
		cmds = cmds[1:]
		if msg := cmd(); msg != nil {
			cmds = append(cmds, c.Update(msg)...)
		}
	}
}

func typeAndSubmit(c *console.Controller, text string) []console.Cmd {
	c.Update(console.InputChanged{Value: text})
	return c.Update(console.Submit{})
}

func kinds(entries []domain.TranscriptEntry) []domain.EntryKind {
	out := make([]domain.EntryKind, len(entries))
	for i, e := range entries {
		out[i] = e.Kind
	}
	return out
}

func gitMatcher() *registry.Registry {
	return registry.New(1, []domain.RegistryEntry{
		{Command: "git status"},
		{Command: "git add"},
	})
}

func TestNew_SeedsWelcomeEntries(t *testing.T) {
	c := newController(testutils.NewFakeExecutor())
	st := c.Snapshot()

	require.Len(t, st.Transcript, 2)
	assert.Equal(t, "Welcome to AI Terminal Emulator", st.Transcript[0].Text)
	assert.Equal(t, `Type commands or use natural language with "ai" prefix`, st.Transcript[1].Text)
	assert.Equal(t, domain.DefaultDirectory, st.CurrentDirectory)
	assert.Equal(t, -1, st.HistoryCursor)
	assert.False(t, st.IsLoading)
}

func TestSubmit_BlankIsIgnored(t *testing.T) {
	exec := testutils.NewFakeExecutor()
	c := newController(exec)

	for _, in := range []string{"", "   ", "\t\n"} {
		assert.Nil(t, c.Submit(in))
		assert.Nil(t, typeAndSubmit(c, in))
	}

	st := c.Snapshot()
	assert.Len(t, st.Transcript, 2)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.SubmittedHistory)
	assert.Empty(t, exec.Calls())
}

func TestSubmit_Success(t *testing.T) {
	exec := testutils.NewFakeExecutor().On("cd /tmp", domain.ExecuteResponse{
		Output: "", ExitCode: 0, Directory: "/tmp",
	})
	c := newController(exec)

	cmds := typeAndSubmit(c, "  cd /tmp  ")
	require.Len(t, cmds, 1)

	st := c.Snapshot()
	assert.True(t, st.IsLoading, "loading while the request is in flight")
	assert.Empty(t, st.Input, "input is cleared on submit")
	require.Len(t, st.Transcript, 3)
	assert.Equal(t, domain.EntryCommand, st.Transcript[2].Kind)
	assert.Equal(t, "cd /tmp", st.Transcript[2].Text)
	assert.Equal(t, domain.DefaultDirectory, st.Transcript[2].Directory, "echo carries the directory at submission time")
	assert.Equal(t, []string{"cd /tmp"}, st.SubmittedHistory)

	drain(c, cmds)

	st = c.Snapshot()
	assert.False(t, st.IsLoading)
	assert.Equal(t, "/tmp", st.CurrentDirectory)
	assert.Equal(t, []domain.EntryKind{
		domain.EntrySystem, domain.EntrySystem, domain.EntryCommand, domain.EntryOutput,
	}, kinds(st.Transcript))
	assert.Equal(t, []string{"cd /tmp"}, exec.Calls())
}

func TestSubmit_NaturalLanguage(t *testing.T) {
	exec := testutils.NewFakeExecutor().On("ai list files", domain.ExecuteResponse{
		Output:             "a.txt\nb.txt",
		IsNaturalLanguage:  true,
		Interpretation:     "Listing files in the current directory",
		InterpretedCommand: "ls",
	})
	c := newController(exec)

	drain(c, typeAndSubmit(c, "ai list files"))

	tr := c.Snapshot().Transcript
	require.Len(t, tr, 5)
	assert.Equal(t, domain.EntrySystem, tr[3].Kind)
	assert.Equal(t, "Listing files in the current directory", tr[3].Text)
	assert.Equal(t, domain.EntryOutput, tr[4].Kind)
	assert.Equal(t, "a.txt\nb.txt", tr[4].Text)
}

func TestSubmit_NonZeroExit(t *testing.T) {
	exec := testutils.NewFakeExecutor().On("cat nope", domain.ExecuteResponse{
		Output: "cat: nope: No such file or directory", ExitCode: 1,
	})
	c := newController(exec, console.WithDirectory("/srv"))

	drain(c, typeAndSubmit(c, "cat nope"))

	st := c.Snapshot()
	last := st.Transcript[len(st.Transcript)-1]
	assert.Equal(t, domain.EntryError, last.Kind)
	assert.Equal(t, "cat: nope: No such file or directory", last.Text)
	assert.Equal(t, "/srv", st.CurrentDirectory)
}

func TestSubmit_TransportFailure(t *testing.T) {
	exec := testutils.NewFakeExecutor().Fail("ls", errors.New("connection refused"))
	c := newController(exec)

	drain(c, typeAndSubmit(c, "ls"))

	st := c.Snapshot()
	assert.False(t, st.IsLoading)
	assert.Equal(t, domain.DefaultDirectory, st.CurrentDirectory)
	last := st.Transcript[len(st.Transcript)-1]
	assert.Equal(t, domain.EntryError, last.Kind)
	assert.Equal(t, "Error: connection refused", last.Text)
}

func TestSubmit_Timeout(t *testing.T) {
	exec := testutils.NewFakeExecutor()
	exec.Hold()
	defer exec.Release()
	c := newController(exec, console.WithExecuteTimeout(20*time.Millisecond))

	drain(c, typeAndSubmit(c, "sleep 100"))

	st := c.Snapshot()
	assert.False(t, st.IsLoading, "a timeout must clear the loading flag")
	last := st.Transcript[len(st.Transcript)-1]
	assert.Equal(t, domain.EntryError, last.Kind)
	assert.Equal(t, "Error: command timed out after 20ms", last.Text)
}

func TestSubmit_TimeoutWithUnwrappedError(t *testing.T) {
	exec := ports.ExecutorFunc(func(ctx context.Context, req domain.ExecuteRequest) (domain.ExecuteResponse, error) {
		<-ctx.Done()
		return domain.ExecuteResponse{}, errors.New("read tcp: i/o timeout")
	})
	c := newController(exec, console.WithExecuteTimeout(20*time.Millisecond))

	drain(c, typeAndSubmit(c, "sleep 100"))

	last := c.Snapshot().Transcript[len(c.Snapshot().Transcript)-1]
	assert.Equal(t, domain.EntryError, last.Kind)
	assert.Equal(t, "Error: command timed out after 20ms", last.Text)
}

func TestSubmit_RefusedWhileLoading(t *testing.T) {
	exec := testutils.NewFakeExecutor()
	c := newController(exec)

	first := typeAndSubmit(c, "first")
	require.Len(t, first, 1)
	before := c.Snapshot()

	c.Update(console.InputChanged{Value: "second"})
	assert.Nil(t, c.Update(console.Submit{}))
	assert.Nil(t, c.Submit("third"))

	after := c.Snapshot()
	assert.Len(t, after.Transcript, len(before.Transcript), "no entry while the first command runs")
	assert.Equal(t, "second", after.Input, "a refused submission keeps the input")
	assert.Equal(t, []string{"first"}, after.SubmittedHistory)

	drain(c, first)
	assert.False(t, c.Snapshot().IsLoading)
	assert.Len(t, c.Snapshot().Transcript, len(before.Transcript)+1)
}

func TestSubmit_TranscriptOrder(t *testing.T) {
	c := newController(testutils.NewFakeExecutor())
	cmds := []string{"one", "two", "three", "four"}
	for _, cmd := range cmds {
		drain(c, typeAndSubmit(c, cmd))
	}

	tr := c.Snapshot().Transcript[2:]
	require.Len(t, tr, 2*len(cmds))
	for i, cmd := range cmds {
		assert.Equal(t, domain.EntryCommand, tr[2*i].Kind)
		assert.Equal(t, cmd, tr[2*i].Text)
		assert.Equal(t, domain.EntryOutput, tr[2*i+1].Kind)
		assert.Equal(t, cmd, tr[2*i+1].Text)
	}
}

func TestExecutionResolved_Unexpected(t *testing.T) {
	c := newController(testutils.NewFakeExecutor())
	c.Update(console.ExecutionResolved{Command: "ghost", Response: domain.ExecuteResponse{Output: "x"}})
	assert.Len(t, c.Snapshot().Transcript, 2)
}

func TestHistory_Recall(t *testing.T) {
	c := newController(testutils.NewFakeExecutor())
	for _, cmd := range []string{"a", "b", "c"} {
		drain(c, typeAndSubmit(c, cmd))
	}

	var got []string
	for i := 0; i < 4; i++ {
		c.Update(console.KeyUp{})
		got = append(got, c.Snapshot().Input)
	}
	assert.Equal(t, []string{"c", "b", "a", "a"}, got, "recall clamps at the oldest entry")
	assert.Equal(t, 2, c.Snapshot().HistoryCursor)

	c.Update(console.KeyDown{})
	assert.Equal(t, "b", c.Snapshot().Input)
	c.Update(console.KeyDown{})
	assert.Equal(t, "c", c.Snapshot().Input)
	c.Update(console.KeyDown{})
	assert.Equal(t, "", c.Snapshot().Input, "leaving history clears the input")
	assert.Equal(t, -1, c.Snapshot().HistoryCursor)

	c.Update(console.InputChanged{Value: "draft"})
	c.Update(console.KeyDown{})
	assert.Equal(t, "draft", c.Snapshot().Input, "down at the live input is a no-op")
}

func TestHistory_EmptyIsNoop(t *testing.T) {
	c := newController(testutils.NewFakeExecutor())
	c.Update(console.KeyUp{})
	assert.Equal(t, -1, c.Snapshot().HistoryCursor)
	_, moved := c.RecallPrevious()
	assert.False(t, moved)
}

func TestHistory_SubmissionResetsCursor(t *testing.T) {
	c := newController(testutils.NewFakeExecutor())
	drain(c, typeAndSubmit(c, "a"))
	drain(c, typeAndSubmit(c, "b"))

	c.Update(console.KeyUp{})
	c.Update(console.KeyUp{})
	require.Equal(t, "a", c.Snapshot().Input)

	drain(c, c.Update(console.Submit{}))
	st := c.Snapshot()
	assert.Equal(t, -1, st.HistoryCursor)
	assert.Equal(t, []string{"a", "b", "a"}, st.SubmittedHistory)
}

func TestHistory_Search(t *testing.T) {
	c := newController(testutils.NewFakeExecutor())
	for _, cmd := range []string{"git status", "ls -la", "git push", "pwd"} {
		drain(c, typeAndSubmit(c, cmd))
	}

	c.Update(console.InputChanged{Value: "git"})
	c.Update(console.SearchHistory{})
	assert.Equal(t, "git push", c.Snapshot().Input)
	c.Update(console.SearchHistory{})
	assert.Equal(t, "git status", c.Snapshot().Input, "repeated search walks older matches")
	c.Update(console.SearchHistory{})
	assert.Equal(t, "git status", c.Snapshot().Input, "no older match keeps the current one")
}

func TestHistory_RecallDropsPendingSuggestions(t *testing.T) {
	sugg := ports.SuggesterFunc(func(ctx context.Context, partial string) ([]string, error) {
		return []string{partial + "-remote"}, nil
	})
	c := newController(testutils.NewFakeExecutor(),
		console.WithMatcher(gitMatcher()),
		console.WithSuggester(sugg),
	)
	drain(c, typeAndSubmit(c, "ls"))
	drain(c, typeAndSubmit(c, "pwd"))

	pending := c.Update(console.InputChanged{Value: "zz"})
	require.Len(t, pending, 1)
	require.False(t, c.Snapshot().SuggestionsVisible)

	c.Update(console.KeyUp{})
	require.Equal(t, "pwd", c.Snapshot().Input)

	drain(c, pending)
	st := c.Snapshot()
	assert.Equal(t, "pwd", st.Input)
	assert.False(t, st.SuggestionsVisible, "late results for the replaced input stay hidden")

	c.Update(console.KeyUp{})
	st = c.Snapshot()
	assert.Equal(t, "ls", st.Input, "arrows keep walking history")
	assert.Equal(t, 1, st.HistoryCursor)
}

func TestHistory_SearchDropsPendingSuggestions(t *testing.T) {
	sugg := ports.SuggesterFunc(func(ctx context.Context, partial string) ([]string, error) {
		return []string{partial + "-remote"}, nil
	})
	c := newController(testutils.NewFakeExecutor(),
		console.WithMatcher(gitMatcher()),
		console.WithSuggester(sugg),
	)
	drain(c, typeAndSubmit(c, "make build"))

	pending := c.Update(console.InputChanged{Value: "mak"})
	c.Update(console.SearchHistory{})
	require.Equal(t, "make build", c.Snapshot().Input)

	drain(c, pending)
	assert.False(t, c.Snapshot().SuggestionsVisible)
	assert.Empty(t, c.Snapshot().Suggestions)
}

func TestSuggestions_LocalThenRemote(t *testing.T) {
	sugg := testutils.NewFakeSuggester(map[string][]string{"gi": {"give-up", "git add"}})
	c := newController(testutils.NewFakeExecutor(),
		console.WithMatcher(gitMatcher()),
		console.WithSuggester(sugg),
	)

	cmds := c.Update(console.InputChanged{Value: "gi"})
	require.Len(t, cmds, 1)

	st := c.Snapshot()
	assert.True(t, st.SuggestionsVisible, "local matches show before the remote answer")
	assert.Equal(t, []string{"git add", "git status"}, st.Suggestions)

	drain(c, cmds)

	st = c.Snapshot()
	assert.True(t, st.SuggestionsVisible)
	assert.Equal(t, []string{"git add", "git status", "give-up"}, st.Suggestions)
	assert.Equal(t, []string{"gi"}, sugg.Calls())
	for _, e := range st.Transcript {
		assert.NotEqual(t, domain.EntryError, e.Kind)
	}
}

func TestSuggestions_Caps(t *testing.T) {
	remote := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9"}
	sugg := testutils.NewFakeSuggester(map[string][]string{"git": remote})
	c := newController(testutils.NewFakeExecutor(), console.WithSuggester(sugg))

	cmds := c.Update(console.InputChanged{Value: "git"})
	assert.Len(t, c.Snapshot().Suggestions, 5, "local matches are capped at 5")

	drain(c, cmds)
	st := c.Snapshot()
	require.Len(t, st.Suggestions, 10, "merged list is capped at 10")
	assert.Equal(t, "git add", st.Suggestions[0])
	assert.Equal(t, "r5", st.Suggestions[9])
}

func TestSuggestions_RemoteFailureFallsBackToLocal(t *testing.T) {
	sugg := testutils.NewFakeSuggester(nil)
	sugg.Err = errors.New("503")
	c := newController(testutils.NewFakeExecutor(),
		console.WithMatcher(gitMatcher()),
		console.WithSuggester(sugg),
	)

	drain(c, c.Update(console.InputChanged{Value: "gi"}))

	st := c.Snapshot()
	assert.True(t, st.SuggestionsVisible)
	assert.Equal(t, []string{"git add", "git status"}, st.Suggestions)
	assert.Len(t, st.Transcript, 2, "remote failures never reach the transcript")
}

func TestSuggestions_RemoteFailureWithoutLocal(t *testing.T) {
	sugg := testutils.NewFakeSuggester(nil)
	sugg.Err = errors.New("down")
	c := newController(testutils.NewFakeExecutor(), console.WithSuggester(sugg))

	drain(c, c.Update(console.InputChanged{Value: "zzz"}))

	st := c.Snapshot()
	assert.False(t, st.SuggestionsVisible)
	assert.Empty(t, st.Suggestions)
}

func TestSuggestions_StaleResponseIsDiscarded(t *testing.T) {
	// Answers even after cancellation, like a slow server ignoring the client.
	sugg := ports.SuggesterFunc(func(ctx context.Context, partial string) ([]string, error) {
		return []string{"remote-" + partial}, nil
	})
	c := newController(testutils.NewFakeExecutor(),
		console.WithMatcher(gitMatcher()),
		console.WithSuggester(sugg),
	)

	older := c.Update(console.InputChanged{Value: "gi"})
	newer := c.Update(console.InputChanged{Value: "git s"})

	drain(c, newer)
	drain(c, older)

	st := c.Snapshot()
	assert.Equal(t, []string{"git status", "remote-git s"}, st.Suggestions)
}

func TestSuggestions_EmptyInputClears(t *testing.T) {
	sugg := testutils.NewFakeSuggester(nil)
	c := newController(testutils.NewFakeExecutor(), console.WithSuggester(sugg))

	drain(c, c.Update(console.InputChanged{Value: "git"}))
	require.True(t, c.Snapshot().SuggestionsVisible)

	assert.Nil(t, c.Update(console.InputChanged{Value: ""}))
	st := c.Snapshot()
	assert.False(t, st.SuggestionsVisible)
	assert.Empty(t, st.Suggestions)
	assert.Equal(t, []string{"git"}, sugg.Calls(), "no request for empty input")
}

func TestSuggestions_Debounce(t *testing.T) {
	sugg := testutils.NewFakeSuggester(nil)
	c := newController(testutils.NewFakeExecutor(),
		console.WithSuggester(sugg),
		console.WithDebounce(10*time.Millisecond),
	)

	first := c.Update(console.InputChanged{Value: "g"})
	second := c.Update(console.InputChanged{Value: "gi"})
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	assert.Nil(t, first[0](), "the superseded timer yields nothing")
	assert.False(t, c.Snapshot().SuggestionsVisible, "nothing is shown before the delay")

	drain(c, second)
	assert.Equal(t, []string{"gi"}, sugg.Calls())
	assert.True(t, c.Snapshot().SuggestionsVisible)
}

func TestSuggestions_SubmitDropsPendingResults(t *testing.T) {
	sugg := ports.SuggesterFunc(func(ctx context.Context, partial string) ([]string, error) {
		return []string{"late"}, nil
	})
	c := newController(testutils.NewFakeExecutor(), console.WithSuggester(sugg))

	pending := c.Update(console.InputChanged{Value: "ls"})
	exec := c.Update(console.Submit{})
	drain(c, pending)
	drain(c, exec)

	st := c.Snapshot()
	assert.False(t, st.SuggestionsVisible)
	assert.Empty(t, st.Suggestions)
}

func TestSuggestions_Autocomplete_Disabled(t *testing.T) {
	sugg := testutils.NewFakeSuggester(nil)
	c := newController(testutils.NewFakeExecutor(),
		console.WithSuggester(sugg),
		console.WithAutocomplete(false),
	)

	assert.Nil(t, c.Update(console.InputChanged{Value: "git"}))
	assert.Nil(t, c.RequestSuggestions("git"))
	assert.False(t, c.Snapshot().SuggestionsVisible)
	assert.Empty(t, sugg.Calls())
}

func TestSelection_Navigation(t *testing.T) {
	c := newController(testutils.NewFakeExecutor(), console.WithMatcher(registry.New(1, []domain.RegistryEntry{
		{Command: "aa"}, {Command: "aab"}, {Command: "aabc"},
	})))
	drain(c, c.Update(console.InputChanged{Value: "a"}))
	require.Equal(t, []string{"aa", "aab", "aabc"}, c.Snapshot().Suggestions)

	c.Update(console.KeyUp{})
	assert.Equal(t, 2, c.Snapshot().SelectedSuggestion, "up from the top wraps to the bottom")
	c.Update(console.KeyDown{})
	assert.Equal(t, 0, c.Snapshot().SelectedSuggestion, "down from the bottom wraps to the top")
	c.Update(console.KeyDown{})
	assert.Equal(t, -1, c.Snapshot().HistoryCursor, "arrow keys do not touch history while suggestions show")

	c.Update(console.Accept{})
	st := c.Snapshot()
	assert.Equal(t, "aab", st.Input)
	assert.False(t, st.SuggestionsVisible)
}

func TestSelection_Dismiss(t *testing.T) {
	c := newController(testutils.NewFakeExecutor())
	drain(c, c.Update(console.InputChanged{Value: "git"}))
	require.True(t, c.Snapshot().SuggestionsVisible)

	c.Update(console.Dismiss{})
	st := c.Snapshot()
	assert.False(t, st.SuggestionsVisible)
	assert.Equal(t, "git", st.Input)

	// Hidden list: Tab does nothing and Up browses history.
	c.Update(console.Accept{})
	assert.Equal(t, "git", c.Snapshot().Input)
}

func TestClear_KeepsDirectoryAndHistory(t *testing.T) {
	exec := testutils.NewFakeExecutor().On("cd /var", domain.ExecuteResponse{Directory: "/var"})
	c := newController(exec)
	drain(c, typeAndSubmit(c, "cd /var"))

	c.Update(console.ClearScreen{})

	st := c.Snapshot()
	assert.Empty(t, st.Transcript)
	assert.Equal(t, "/var", st.CurrentDirectory)
	assert.Equal(t, []string{"cd /var"}, st.SubmittedHistory)
	assert.Equal(t, 1, st.Clears)
}

func TestInit_StatusSetsDirectory(t *testing.T) {
	t.Run("Applied", func(t *testing.T) {
		c := newController(testutils.NewFakeExecutor(),
			console.WithStatusProvider(testutils.FakeStatus{Result: domain.Status{CurrentDirectory: "/home/user"}}))
		drain(c, c.Init())
		assert.Equal(t, "/home/user", c.Snapshot().CurrentDirectory)
	})

	t.Run("Failure is ignored", func(t *testing.T) {
		c := newController(testutils.NewFakeExecutor(),
			console.WithStatusProvider(testutils.FakeStatus{Err: errors.New("down")}))
		drain(c, c.Init())
		st := c.Snapshot()
		assert.Equal(t, domain.DefaultDirectory, st.CurrentDirectory)
		assert.Len(t, st.Transcript, 2)
	})

	t.Run("Execution wins", func(t *testing.T) {
		exec := testutils.NewFakeExecutor().On("cd /opt", domain.ExecuteResponse{Directory: "/opt"})
		c := newController(exec,
			console.WithStatusProvider(testutils.FakeStatus{Result: domain.Status{CurrentDirectory: "/stale"}}))
		initCmds := c.Init()
		drain(c, typeAndSubmit(c, "cd /opt"))
		drain(c, initCmds)
		assert.Equal(t, "/opt", c.Snapshot().CurrentDirectory)
	})

	t.Run("No provider", func(t *testing.T) {
		assert.Nil(t, newController(testutils.NewFakeExecutor()).Init())
	})
}

func TestLifecycleHooks(t *testing.T) {
	var submits, results, suggests int
	var lastResult *domain.ResultEvent
	hooks := domain.LifecycleHooks{
		OnSubmit:  func(ctx context.Context, e *domain.SubmitEvent) { submits++ },
		OnResult:  func(ctx context.Context, e *domain.ResultEvent) { results++; lastResult = e },
		OnSuggest: func(ctx context.Context, e *domain.SuggestEvent) { suggests++ },
	}
	exec := testutils.NewFakeExecutor().On("false", domain.ExecuteResponse{ExitCode: 1})
	c := newController(exec,
		console.WithLifecycleHooks(hooks),
		console.WithSessionID("s-1"),
		console.WithSuggester(testutils.NewFakeSuggester(nil)),
	)

	drain(c, c.Update(console.InputChanged{Value: "fa"}))
	drain(c, c.Update(console.Submit{}))
	c.Submit(" ")
	drain(c, c.Submit("false"))

	assert.Equal(t, 2, submits)
	assert.Equal(t, 2, results)
	assert.Equal(t, 1, suggests)
	require.NotNil(t, lastResult)
	assert.True(t, lastResult.Failed())
	assert.Equal(t, "s-1", lastResult.SessionID)
}

func TestWithSnapshot_Resume(t *testing.T) {
	snap := domain.NewSessionState("old", "/data", epoch)
	snap.IsLoading = true
	snap.SubmittedHistory = []string{"x", "y"}
	snap.HistoryCursor = 7

	c := newController(testutils.NewFakeExecutor(), console.WithSnapshot(snap), console.WithSessionID("new"))
	st := c.Snapshot()

	assert.Equal(t, "new", st.SessionID)
	assert.False(t, st.IsLoading, "an interrupted execution does not block the resumed session")
	assert.Equal(t, -1, st.HistoryCursor)
	assert.Equal(t, "/data", st.CurrentDirectory)

	c.Update(console.KeyUp{})
	assert.Equal(t, "y", c.Snapshot().Input)
	assert.True(t, snap.IsLoading, "the snapshot itself is not modified")
}

func TestParseEvent(t *testing.T) {
	msg, err := console.ParseEvent("input", "ls")
	require.NoError(t, err)
	assert.Equal(t, console.InputChanged{Value: "ls"}, msg)

	msg, err = console.ParseEvent("tab", "")
	require.NoError(t, err)
	assert.Equal(t, console.Accept{}, msg)

	_, err = console.ParseEvent("explode", "")
	assert.ErrorIs(t, err, domain.ErrUnknownEvent)
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name          string
		local, remote []string
		limit         int
		want          []string
	}{
		{"local first", []string{"a", "b"}, []string{"c"}, 10, []string{"a", "b", "c"}},
		{"duplicates keep local position", []string{"a", "b"}, []string{"b", "a", "c"}, 10, []string{"a", "b", "c"}},
		{"blanks dropped", nil, []string{"", "x", ""}, 10, []string{"x"}},
		{"capped", []string{"a", "b"}, []string{"c", "d"}, 3, []string{"a", "b", "c"}},
		{"remote duplicates collapse", nil, []string{"x", "x"}, 10, []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, console.Merge(tt.local, tt.remote, tt.limit))
		})
	}
}
