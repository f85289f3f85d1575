package http

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/domain"
)

// Diff fields a stream subscriber can watch.
const (
	FieldTranscript  = "transcript"
	FieldDirectory   = "directory"
	FieldLoading     = "loading"
	FieldInput       = "input"
	FieldSuggestions = "suggestions"
	FieldHistory     = "history"
)

// subscriber is one open SSE connection.
type subscriber struct {
	ch    chan *domain.StateDiff
	watch []string
}

// wants reports whether diff touches one of the watched fields.
// An empty watch list receives everything.
func (s *subscriber) wants(diff *domain.StateDiff) bool {
	if len(s.watch) == 0 {
		return true
	}
	for _, field := range s.watch {
		switch field {
		case FieldTranscript:
			if diff.Reset || len(diff.Appended) > 0 {
				return true
			}
		case FieldDirectory:
			if diff.CurrentDirectory != nil {
				return true
			}
		case FieldLoading:
			if diff.IsLoading != nil {
				return true
			}
		case FieldInput:
			if diff.Input != nil {
				return true
			}
		case FieldSuggestions:
			if diff.Suggestions != nil {
				return true
			}
		case FieldHistory:
			if diff.History != nil {
				return true
			}
		}
	}
	return false
}

// DiffFeed fans state diffs out to the SSE clients of each session.
// Slow clients lose diffs instead of blocking the session loop.
type DiffFeed struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	dropped     atomic.Uint64
	logger      *slog.Logger
}

// NewDiffFeed creates an empty feed.
func NewDiffFeed() *DiffFeed {
	return &DiffFeed{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logging.NewNop(),
	}
}

// ParseWatch splits a comma separated field list such as "transcript,loading".
func ParseWatch(raw string) []string {
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Subscribe registers a client for sessionID. Only diffs touching one of the
// watch fields are delivered. The returned func unsubscribes and closes the channel.
func (f *DiffFeed) Subscribe(sessionID string, watch ...string) (<-chan *domain.StateDiff, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &subscriber{ch: make(chan *domain.StateDiff, 16), watch: watch}
	if _, ok := f.subscribers[sessionID]; !ok {
		f.subscribers[sessionID] = make(map[*subscriber]struct{})
	}
	f.subscribers[sessionID][sub] = struct{}{}

	return sub.ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs, ok := f.subscribers[sessionID]
		if !ok {
			return
		}
		if _, ok := subs[sub]; !ok {
			return
		}
		delete(subs, sub)
		close(sub.ch)
		if len(subs) == 0 {
			delete(f.subscribers, sessionID)
		}
	}
}

// Subscribers counts the open streams of a session.
func (f *DiffFeed) Subscribers(sessionID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers[sessionID])
}

// Close ends every stream of sessionID.
func (f *DiffFeed) Close(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subscribers[sessionID] {
		close(sub.ch)
	}
	delete(f.subscribers, sessionID)
}

// Dropped returns how many diffs were discarded because a client fell behind.
func (f *DiffFeed) Dropped() uint64 {
	return f.dropped.Load()
}

// Publish delivers diff to every interested subscriber of sessionID.
func (f *DiffFeed) Publish(sessionID string, diff *domain.StateDiff) {
	if diff == nil {
		return
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	for sub := range f.subscribers[sessionID] {
		if !sub.wants(diff) {
			continue
		}
		select {
		case sub.ch <- diff:
		default:
			f.dropped.Add(1)
			f.logger.Warn("SSE: Client buffer full, dropping diff", "session_id", sessionID)
		}
	}
}
