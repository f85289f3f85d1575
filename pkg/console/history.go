package console

import "strings"

// HistoryNavigator moves a cursor over previously submitted commands.
// Cursor 0 is the most recent submission; -1 means the user is editing live input.
type HistoryNavigator struct {
	store *Store
}

// NewHistoryNavigator binds a navigator to a store.
func NewHistoryNavigator(store *Store) *HistoryNavigator {
	return &HistoryNavigator{store: store}
}

// RecordSubmission appends cmd to the history and stops browsing.
func (h *HistoryNavigator) RecordSubmission(cmd string) {
	h.store.appendHistory(cmd)
	h.store.setCursor(-1)
}

// RecallPrevious moves one step toward older commands and loads it into the input.
// Past the oldest entry the cursor stays put and moved is false.
func (h *HistoryNavigator) RecallPrevious() (cmd string, moved bool) {
	hist := h.store.state.SubmittedHistory
	cursor := h.store.HistoryCursor()
	if len(hist) == 0 {
		return "", false
	}
	if cursor+1 >= len(hist) {
		return hist[len(hist)-1-cursor], false
	}
	cursor++
	h.store.setCursor(cursor)
	cmd = hist[len(hist)-1-cursor]
	h.store.setInput(cmd)
	return cmd, true
}

// RecallNext moves one step toward the live input. Reaching it clears the input buffer.
func (h *HistoryNavigator) RecallNext() (cmd string, moved bool) {
	hist := h.store.state.SubmittedHistory
	cursor := h.store.HistoryCursor()
	switch {
	case cursor > 0:
		cursor--
		h.store.setCursor(cursor)
		cmd = hist[len(hist)-1-cursor]
		h.store.setInput(cmd)
		return cmd, true
	case cursor == 0:
		h.store.setCursor(-1)
		h.store.setInput("")
		return "", true
	default:
		return "", false
	}
}

// Search looks for the newest command older than the cursor that contains query,
// and loads it into the input. An empty query matches any command.
func (h *HistoryNavigator) Search(query string) (string, bool) {
	hist := h.store.state.SubmittedHistory
	needle := strings.ToLower(query)
	for cursor := h.store.HistoryCursor() + 1; cursor < len(hist); cursor++ {
		cmd := hist[len(hist)-1-cursor]
		if strings.Contains(strings.ToLower(cmd), needle) {
			h.store.setCursor(cursor)
			h.store.setInput(cmd)
			return cmd, true
		}
	}
	return "", false
}
