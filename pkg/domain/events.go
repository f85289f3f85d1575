package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSubmit  EventType = "submit"
	EventResult  EventType = "result"
	EventSuggest EventType = "suggest"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// SubmitEvent is emitted when a command is admitted by the pipeline.
type SubmitEvent struct {
	EventBase
	Command   string `json:"command"`
	Directory string `json:"directory"`
}

// ResultEvent is emitted when an execution resolves, successfully or not.
type ResultEvent struct {
	EventBase
	Command         string        `json:"command"`
	ExitCode        int           `json:"exit_code"`
	NaturalLanguage bool          `json:"natural_language,omitempty"`
	Duration        time.Duration `json:"duration"`
	Err             error         `json:"-"`
}

// Failed reports whether the execution produced an error entry.
func (e *ResultEvent) Failed() bool {
	return e.Err != nil || e.ExitCode != 0
}

// SuggestEvent is emitted when a suggestion request resolves.
type SuggestEvent struct {
	EventBase
	Partial string `json:"partial"`
	Local   int    `json:"local"`
	Remote  int    `json:"remote"`
	Failed  bool   `json:"failed,omitempty"`
	Stale   bool   `json:"stale,omitempty"`
}

// LifecycleHooks defines callbacks for console observability.
type LifecycleHooks struct {
	OnSubmit  func(context.Context, *SubmitEvent)
	OnResult  func(context.Context, *ResultEvent)
	OnSuggest func(context.Context, *SuggestEvent)
}
