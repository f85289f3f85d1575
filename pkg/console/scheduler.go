package console

import (
	"context"
	"time"
)

// Scheduler tracks the single pending suggestion task.
// Scheduling a new task cancels the previous one, and results stamped with an
// older generation are reported stale. Only the controller goroutine may use it.
type Scheduler struct {
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
}

// NewScheduler creates a scheduler whose tasks derive from parent.
func NewScheduler(parent context.Context) *Scheduler {
	return &Scheduler{parent: parent}
}

// Schedule cancels the pending task and starts a new generation.
// The returned context lives until the next Schedule or Cancel.
func (s *Scheduler) Schedule() (uint64, context.Context) {
	s.stop()
	s.gen++
	s.ctx, s.cancel = context.WithCancel(s.parent)
	return s.gen, s.ctx
}

// Cancel aborts the pending task and makes every in-flight result stale.
func (s *Scheduler) Cancel() {
	s.stop()
	s.gen++
}

// Current reports whether gen belongs to the latest scheduled task.
func (s *Scheduler) Current(gen uint64) bool {
	return s.cancel != nil && gen == s.gen
}

// Context returns the context of the pending task, or nil.
func (s *Scheduler) Context() context.Context {
	if s.cancel == nil {
		return nil
	}
	return s.ctx
}

// Rebase makes future tasks derive from parent. The pending task is cancelled.
func (s *Scheduler) Rebase(parent context.Context) {
	s.Cancel()
	s.parent = parent
}

func (s *Scheduler) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.ctx = nil
	}
}

// Delay returns a Cmd that yields msg after d, or nil if ctx is cancelled first.
func Delay(ctx context.Context, d time.Duration, msg Msg) Cmd {
	return func() Msg {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}
