package console

import (
	"time"

	"github.com/aretw0/aiterm/pkg/domain"
)

// Store is the authoritative session state.
// It holds no business rules; the navigator, aggregator and pipeline mutate it.
// Not safe for concurrent use: it belongs to the controller goroutine.
type Store struct {
	state *domain.SessionState
}

// NewStore creates a store seeded with the welcome notices.
func NewStore(sessionID, directory string, now time.Time) *Store {
	return &Store{state: domain.NewSessionState(sessionID, directory, now)}
}

// RestoreStore rebuilds a store from a persisted snapshot.
// An execution cannot survive a restart, so the loading flag is dropped.
func RestoreStore(snapshot *domain.SessionState) *Store {
	st := snapshot.Clone()
	if st.CurrentDirectory == "" {
		st.CurrentDirectory = domain.DefaultDirectory
	}
	if st.Transcript == nil {
		st.Transcript = []domain.TranscriptEntry{}
	}
	if st.Suggestions == nil {
		st.Suggestions = []string{}
	}
	if st.SubmittedHistory == nil {
		st.SubmittedHistory = []string{}
	}
	if st.HistoryCursor < -1 || st.HistoryCursor >= len(st.SubmittedHistory) {
		st.HistoryCursor = -1
	}
	st.IsLoading = false
	return &Store{state: st}
}

// Append adds an entry to the end of the transcript.
func (s *Store) Append(entry domain.TranscriptEntry) {
	s.state.Transcript = append(s.state.Transcript, entry)
}

// SetDirectory updates the current working directory.
func (s *Store) SetDirectory(path string) {
	s.state.CurrentDirectory = path
}

// Clear empties the transcript. Directory and submitted history are kept.
func (s *Store) Clear() {
	s.state.Transcript = []domain.TranscriptEntry{}
	s.state.Clears++
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *domain.SessionState {
	return s.state.Clone()
}

func (s *Store) Transcript() []domain.TranscriptEntry {
	return append([]domain.TranscriptEntry(nil), s.state.Transcript...)
}

func (s *Store) Directory() string { return s.state.CurrentDirectory }
func (s *Store) IsLoading() bool { return s.state.IsLoading }
func (s *Store) Input() string { return s.state.Input }
func (s *Store) SuggestionsVisible() bool { return s.state.SuggestionsVisible }
func (s *Store) SelectedSuggestion() int { return s.state.SelectedSuggestion }
func (s *Store) HistoryCursor() int { return s.state.HistoryCursor }
func (s *Store) SessionID() string { return s.state.SessionID }

func (s *Store) Suggestions() []string {
	return append([]string(nil), s.state.Suggestions...)
}

func (s *Store) SubmittedHistory() []string {
	return append([]string(nil), s.state.SubmittedHistory...)
}

func (s *Store) setLoading(v bool) { s.state.IsLoading = v }
func (s *Store) setInput(v string) { s.state.Input = v }
func (s *Store) setCursor(i int) { s.state.HistoryCursor = i }
func (s *Store) setSelected(i int) { s.state.SelectedSuggestion = i }

func (s *Store) setSuggestions(items []string, visible bool) {
	s.state.Suggestions = items
	s.state.SuggestionsVisible = visible
}

func (s *Store) appendHistory(cmd string) {
	s.state.SubmittedHistory = append(s.state.SubmittedHistory, cmd)
}
