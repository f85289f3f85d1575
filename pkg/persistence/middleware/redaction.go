package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/ports"
)

// Mask replaces redacted text.
const Mask = "***"

// DefaultRedactPatterns catch credentials typed inline with a command.
// When a pattern has a group named "secret" only that group is masked.
var DefaultRedactPatterns = []string{
	`(?i)\b(?:password|passwd|token|secret|api[_-]?key)\s*[=:]\s*(?P<secret>[^\s'"]+)`,
	`(?i)\bbearer\s+(?P<secret>[A-Za-z0-9._~+/-]+=*)`,
	`(?i)(?:^|\s)--password\s+(?P<secret>\S+)`,
}

type redactionMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware masks secrets in the persisted transcript, history and input.
// The caller's snapshot is left untouched; only the stored copy is redacted.
func NewRedactionMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &redactionMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	cloned := state.Clone()
	for i := range cloned.Transcript {
		cloned.Transcript[i].Text = m.Redact(cloned.Transcript[i].Text)
	}
	for i := range cloned.SubmittedHistory {
		cloned.SubmittedHistory[i] = m.Redact(cloned.SubmittedHistory[i])
	}
	cloned.Input = m.Redact(cloned.Input)
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Redact applies every pattern to s.
func (m *redactionMiddleware) Redact(s string) string {
	for _, re := range m.patterns {
		s = redact(re, s)
	}
	return s
}

func redact(re *regexp.Regexp, s string) string {
	group := re.SubexpIndex("secret")
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var out []byte
	last := 0
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		if group >= 0 {
			start, end = loc[2*group], loc[2*group+1]
			if start < 0 {
				continue
			}
		}
		out = append(out, s[last:start]...)
		out = append(out, Mask...)
		last = end
	}
	out = append(out, s[last:]...)
	return string(out)
}
