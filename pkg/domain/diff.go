package domain

import "slices"

// StateDiff represents the changes between two session snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Reset tells the client to drop its transcript before applying Appended.
	Reset bool `json:"reset,omitempty"`

	// Appended contains new transcript entries, in order.
	Appended []TranscriptEntry `json:"appended,omitempty"`

	CurrentDirectory *string `json:"current_directory,omitempty"`
	IsLoading        *bool   `json:"is_loading,omitempty"`
	Input            *string `json:"input,omitempty"`

	Suggestions *SuggestionDelta `json:"suggestions,omitempty"`
	History     *HistoryDelta    `json:"history,omitempty"`
}

// SuggestionDelta carries the whole suggestion state; lists are short.
type SuggestionDelta struct {
	Items    []string `json:"items"`
	Visible  bool     `json:"visible"`
	Selected int      `json:"selected"`
}

// HistoryDelta represents changes to the submitted history.
type HistoryDelta struct {
	Appended []string `json:"appended,omitempty"`
	Cursor   int      `json:"cursor"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *SessionState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	// 1. Transcript
	diff.Reset, diff.Appended = diffTranscript(oldState, newState)

	// 2. Scalars
	if oldState == nil || oldState.CurrentDirectory != newState.CurrentDirectory {
		diff.CurrentDirectory = &newState.CurrentDirectory
	}
	if oldState == nil || oldState.IsLoading != newState.IsLoading {
		diff.IsLoading = &newState.IsLoading
	}
	if oldState == nil || oldState.Input != newState.Input {
		diff.Input = &newState.Input
	}

	// 3. Suggestions
	if oldState == nil ||
		oldState.SuggestionsVisible != newState.SuggestionsVisible ||
		oldState.SelectedSuggestion != newState.SelectedSuggestion ||
		!slices.Equal(oldState.Suggestions, newState.Suggestions) {
		diff.Suggestions = &SuggestionDelta{
			Items:    newState.Suggestions,
			Visible:  newState.SuggestionsVisible,
			Selected: newState.SelectedSuggestion,
		}
	}

	// 4. History
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffTranscript(old, new *SessionState) (bool, []TranscriptEntry) {
	if old == nil {
		return false, new.Transcript
	}
	if old.Clears != new.Clears || len(new.Transcript) < len(old.Transcript) {
		return true, new.Transcript
	}
	if len(new.Transcript) > len(old.Transcript) {
		return false, new.Transcript[len(old.Transcript):]
	}
	return false, nil
}

// diffHistory assumes the submitted history is append-only.
func diffHistory(old, new *SessionState) *HistoryDelta {
	if old == nil {
		if len(new.SubmittedHistory) == 0 && new.HistoryCursor == -1 {
			return nil
		}
		return &HistoryDelta{Appended: new.SubmittedHistory, Cursor: new.HistoryCursor}
	}

	var appended []string
	if len(new.SubmittedHistory) > len(old.SubmittedHistory) {
		appended = new.SubmittedHistory[len(old.SubmittedHistory):]
	}
	if appended == nil && old.HistoryCursor == new.HistoryCursor {
		return nil
	}
	return &HistoryDelta{Appended: appended, Cursor: new.HistoryCursor}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return !d.Reset &&
		len(d.Appended) == 0 &&
		d.CurrentDirectory == nil &&
		d.IsLoading == nil &&
		d.Input == nil &&
		d.Suggestions == nil &&
		d.History == nil
}
