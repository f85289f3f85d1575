package domain

import "time"

// EntryKind classifies a transcript line.
type EntryKind string

const (
	EntryCommand EntryKind = "command" // Echo of a submitted command
	EntryOutput  EntryKind = "output"  // Successful result
	EntryError   EntryKind = "error"   // Failed result or transport failure
	EntrySystem  EntryKind = "system"  // Notices from the console itself
)

// TranscriptEntry is one line of the session transcript.
// Entries are never mutated after being appended.
type TranscriptEntry struct {
	Kind      EntryKind `json:"kind"`
	Text      string    `json:"text"`
	Directory string    `json:"directory,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntry builds an entry stamped with the given time.
func NewEntry(kind EntryKind, text string, at time.Time) TranscriptEntry {
	return TranscriptEntry{Kind: kind, Text: text, Timestamp: at}
}

// WelcomeEntries returns the system notices every new session starts with.
func WelcomeEntries(at time.Time) []TranscriptEntry {
	return []TranscriptEntry{
		NewEntry(EntrySystem, "Welcome to AI Terminal Emulator", at),
		NewEntry(EntrySystem, `Type commands or use natural language with "ai" prefix`, at),
	}
}
