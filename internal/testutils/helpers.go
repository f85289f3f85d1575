package testutils

import (
	"context"
	"sync"

	"github.com/aretw0/aiterm/pkg/domain"
)

// FakeExecutor is a scripted ports.Executor.
// Unknown commands echo back with exit code 0.
type FakeExecutor struct {
	mu        sync.Mutex
	responses map[string]domain.ExecuteResponse
	errors    map[string]error
	gate      chan struct{}
	calls     []string
	started   chan string
}

// NewFakeExecutor creates an executor with no scripted answers.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		responses: make(map[string]domain.ExecuteResponse),
		errors:    make(map[string]error),
		started:   make(chan string, 64),
	}
}

// On scripts the answer for cmd.
func (f *FakeExecutor) On(cmd string, resp domain.ExecuteResponse) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[cmd] = resp
	return f
}

// Fail scripts a transport failure for cmd.
func (f *FakeExecutor) Fail(cmd string, err error) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[cmd] = err
	return f
}

// Hold makes subsequent calls block until Release or until their context ends.
func (f *FakeExecutor) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate == nil {
		f.gate = make(chan struct{})
	}
}

// Release unblocks held calls.
func (f *FakeExecutor) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Started receives each command as its call begins.
func (f *FakeExecutor) Started() <-chan string {
	return f.started
}

// Calls returns the commands received so far.
func (f *FakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Execute implements ports.Executor.
func (f *FakeExecutor) Execute(ctx context.Context, req domain.ExecuteRequest) (domain.ExecuteResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Command)
	gate := f.gate
	resp, scripted := f.responses[req.Command]
	err := f.errors[req.Command]
	f.mu.Unlock()

	select {
	case f.started <- req.Command:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.ExecuteResponse{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.ExecuteResponse{}, err
	}
	if !scripted {
		resp = domain.ExecuteResponse{Output: req.Command}
	}
	return resp, nil
}

// FakeSuggester is a scripted ports.Suggester.
type FakeSuggester struct {
	mu      sync.Mutex
	Results map[string][]string
	Err     error
	calls   []string
}

// NewFakeSuggester creates a suggester answering from results.
func NewFakeSuggester(results map[string][]string) *FakeSuggester {
	if results == nil {
		results = make(map[string][]string)
	}
	return &FakeSuggester{Results: results}
}

// Suggest implements ports.Suggester.
func (f *FakeSuggester) Suggest(ctx context.Context, partial string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, partial)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Results[partial], nil
}

// Calls returns the partials requested so far.
func (f *FakeSuggester) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FakeStatus is a fixed ports.StatusProvider.
type FakeStatus struct {
	Result domain.Status
	Err    error
}

// Status implements ports.StatusProvider.
func (f FakeStatus) Status(ctx context.Context) (domain.Status, error) {
	return f.Result, f.Err
}
