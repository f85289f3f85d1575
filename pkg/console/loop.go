package console

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/aretw0/aiterm/pkg/domain"
)

// ErrLoopStopped is returned when dispatching to a loop that is not running.
var ErrLoopStopped = errors.New("console loop stopped")

// Observer is notified after every state change, on the loop goroutine.
type Observer func(prev, next *domain.SessionState, diff *domain.StateDiff)

// Loop drives a Controller from a single goroutine.
// Events may be dispatched from any goroutine; Cmds run concurrently and
// their results are queued back as events.
type Loop struct {
	ctrl      *Controller
	events    chan Msg
	observers []Observer

	state   atomic.Pointer[domain.SessionState]
	mu      sync.Mutex
	changed chan struct{}
	subs    map[chan *domain.StateDiff]struct{}

	started atomic.Bool
	stopped chan struct{}
	wg      sync.WaitGroup
}

// LoopOption configures the Loop.
type LoopOption func(*Loop)

// WithObserver registers a callback for state changes.
func WithObserver(o Observer) LoopOption {
	return func(l *Loop) {
		l.observers = append(l.observers, o)
	}
}

// WithQueueSize sets the event buffer size (default 64).
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		l.events = make(chan Msg, n)
	}
}

// NewLoop wraps ctrl. The controller must not be used directly once the loop runs.
func NewLoop(ctrl *Controller, opts ...LoopOption) *Loop {
	l := &Loop{
		ctrl:    ctrl,
		events:  make(chan Msg, 64),
		changed: make(chan struct{}),
		subs:    make(map[chan *domain.StateDiff]struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.state.Store(ctrl.Snapshot())
	return l
}

// Run processes events until ctx is cancelled. In-flight Cmds observe the same
// context and Run waits for them before returning.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.New("console loop already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		l.ctrl.Close()
		close(l.stopped)
		l.wg.Wait()
		l.closeSubscribers()
	}()

	l.ctrl.SetContext(ctx)
	l.spawn(l.ctrl.Init())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-l.events:
			if env, ok := msg.(envelope); ok {
				l.apply(env.msg)
				env.done <- l.state.Load().Clone()
				continue
			}
			l.apply(msg)
		}
	}
}

// Dispatch queues msg for the loop. It blocks while the queue is full.
func (l *Loop) Dispatch(ctx context.Context, msg Msg) error {
	select {
	case <-l.stopped:
		return ErrLoopStopped
	default:
	}
	select {
	case l.events <- msg:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// envelope carries a Send request through the event queue.
type envelope struct {
	msg  Msg
	done chan *domain.SessionState
}

// Send queues msg and waits until the loop has applied it.
// It returns the state published right after; Cmds the event started may still be running.
func (l *Loop) Send(ctx context.Context, msg Msg) (*domain.SessionState, error) {
	env := envelope{msg: msg, done: make(chan *domain.SessionState, 1)}
	if err := l.Dispatch(ctx, env); err != nil {
		return nil, err
	}
	select {
	case st := <-env.done:
		return st, nil
	case <-l.stopped:
		return nil, ErrLoopStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the latest published snapshot. Safe for concurrent use.
func (l *Loop) State() *domain.SessionState {
	return l.state.Load().Clone()
}

// WaitFor blocks until pred holds for the published state, or ctx ends.
func (l *Loop) WaitFor(ctx context.Context, pred func(*domain.SessionState) bool) (*domain.SessionState, error) {
	for {
		l.mu.Lock()
		ch := l.changed
		l.mu.Unlock()

		if st := l.state.Load(); pred(st) {
			return st.Clone(), nil
		}
		select {
		case <-ch:
		case <-l.stopped:
			return nil, ErrLoopStopped
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Subscribe returns a channel of state diffs and a function to stop receiving them.
// Slow subscribers miss diffs rather than stall the loop.
func (l *Loop) Subscribe() (<-chan *domain.StateDiff, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan *domain.StateDiff, 16)
	if l.subs == nil {
		close(ch)
		return ch, func() {}
	}
	l.subs[ch] = struct{}{}
	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.subs[ch]; ok {
			delete(l.subs, ch)
			close(ch)
		}
	}
}

func (l *Loop) apply(msg Msg) {
	if msg == nil {
		return
	}
	cmds := l.ctrl.Update(msg)
	l.publish()
	l.spawn(cmds)
}

func (l *Loop) spawn(cmds []Cmd) {
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		l.wg.Add(1)
		go func(cmd Cmd) {
			defer l.wg.Done()
			msg := cmd()
			if msg == nil {
				return
			}
			select {
			case l.events <- msg:
			case <-l.stopped:
			}
		}(cmd)
	}
}

func (l *Loop) publish() {
	prev := l.state.Load()
	next := l.ctrl.Snapshot()
	diff := domain.Diff(prev, next)
	if diff == nil {
		return
	}
	l.state.Store(next)

	for _, o := range l.observers {
		o(prev, next, diff)
	}

	l.mu.Lock()
	for ch := range l.subs {
		select {
		case ch <- diff:
		default:
		}
	}
	close(l.changed)
	l.changed = make(chan struct{})
	l.mu.Unlock()
}

func (l *Loop) closeSubscribers() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		close(ch)
	}
	l.subs = nil
}
