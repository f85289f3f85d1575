package console

// Matcher is the local completion source (the command registry).
type Matcher interface {
	Commands(partial string, limit int) []string
}

const (
	// DefaultLocalLimit caps registry matches per request.
	DefaultLocalLimit = 5
	// DefaultTotalLimit caps the merged list.
	DefaultTotalLimit = 10
)

// Aggregator merges local and remote completions into the store's suggestion list
// and owns selection navigation over it.
type Aggregator struct {
	store      *Store
	matcher    Matcher
	localLimit int
	totalLimit int
}

// NewAggregator binds an aggregator to a store and a local matcher.
func NewAggregator(store *Store, matcher Matcher, localLimit, totalLimit int) *Aggregator {
	if localLimit <= 0 {
		localLimit = DefaultLocalLimit
	}
	if totalLimit <= 0 {
		totalLimit = DefaultTotalLimit
	}
	return &Aggregator{store: store, matcher: matcher, localLimit: localLimit, totalLimit: totalLimit}
}

// Local returns the registry matches for partial, in rank order.
func (a *Aggregator) Local(partial string) []string {
	if partial == "" || a.matcher == nil {
		return nil
	}
	return a.matcher.Commands(partial, a.localLimit)
}

// Merge concatenates local and remote, dropping duplicates and blanks while keeping
// first-seen order, and caps the result at limit (no cap when limit <= 0).
func Merge(local, remote []string, limit int) []string {
	out := make([]string, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local)+len(remote))
	for _, list := range [][]string{local, remote} {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			if limit > 0 && len(out) >= limit {
				return out
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Show publishes items. The list is visible only when non-empty.
// The selection survives if it still points inside the list.
func (a *Aggregator) Show(items []string) {
	if len(items) > a.totalLimit {
		items = items[:a.totalLimit]
	}
	a.store.setSuggestions(items, len(items) > 0)
	if sel := a.store.SelectedSuggestion(); sel < 0 || sel >= len(items) {
		a.store.setSelected(0)
	}
}

// Reset replaces the list and starts the selection at the top.
func (a *Aggregator) Reset(items []string) {
	a.store.setSelected(0)
	a.Show(items)
}

// Clear empties and hides the list.
func (a *Aggregator) Clear() {
	a.store.setSuggestions([]string{}, false)
	a.store.setSelected(0)
}

// MoveSelection moves the highlight by delta, wrapping around the list.
func (a *Aggregator) MoveSelection(delta int) {
	n := len(a.store.state.Suggestions)
	if n == 0 {
		return
	}
	next := (a.store.SelectedSuggestion() + delta) % n
	if next < 0 {
		next += n
	}
	a.store.setSelected(next)
}

// AcceptSelection copies the highlighted suggestion into the input and hides the list.
func (a *Aggregator) AcceptSelection() (string, bool) {
	text, ok := a.store.state.SelectedText()
	if !ok {
		return "", false
	}
	a.store.setInput(text)
	a.store.setSuggestions(a.store.state.Suggestions, false)
	return text, true
}

// Dismiss hides the list without touching the input.
func (a *Aggregator) Dismiss() {
	a.store.setSuggestions(a.store.state.Suggestions, false)
}
