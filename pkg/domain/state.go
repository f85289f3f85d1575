package domain

import "time"

// DefaultDirectory is the working directory shown before the executor reports one.
const DefaultDirectory = "~/Desktop"

// SessionState is a read-only snapshot of a console session.
// Renderers and remote clients consume it; only the controller produces it.
type SessionState struct {
	SessionID string `json:"session_id,omitempty"`

	Transcript       []TranscriptEntry `json:"transcript"`
	CurrentDirectory string            `json:"current_directory"`
	IsLoading        bool              `json:"is_loading"`

	// Input is the live input buffer.
	Input string `json:"input"`

	Suggestions        []string `json:"suggestions"`
	SuggestionsVisible bool     `json:"suggestions_visible"`
	SelectedSuggestion int      `json:"selected_suggestion"`

	SubmittedHistory []string `json:"submitted_history"`
	// HistoryCursor is -1 while the user is not browsing history.
	HistoryCursor int `json:"history_cursor"`

	// Clears counts how many times the transcript was emptied.
	Clears int `json:"clears"`
}

// NewSessionState creates the initial snapshot of a session.
func NewSessionState(sessionID, directory string, now time.Time) *SessionState {
	if directory == "" {
		directory = DefaultDirectory
	}
	return &SessionState{
		SessionID:        sessionID,
		Transcript:       WelcomeEntries(now),
		CurrentDirectory: directory,
		Suggestions:      []string{},
		SubmittedHistory: []string{},
		HistoryCursor:    -1,
	}
}

// SelectedText returns the highlighted suggestion, if any is visible.
func (s *SessionState) SelectedText() (string, bool) {
	if !s.SuggestionsVisible || s.SelectedSuggestion < 0 || s.SelectedSuggestion >= len(s.Suggestions) {
		return "", false
	}
	return s.Suggestions[s.SelectedSuggestion], true
}

// Clone returns a deep copy that shares no slices with s.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	c.Transcript = append([]TranscriptEntry(nil), s.Transcript...)
	c.Suggestions = append([]string(nil), s.Suggestions...)
	c.SubmittedHistory = append([]string(nil), s.SubmittedHistory...)
	return &c
}
