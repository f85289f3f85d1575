package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/aiterm/pkg/domain"
)

// LogHooks logs every lifecycle event at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.DebugContext(ctx, "submit", "session_id", e.SessionID, "command", e.Command, "directory", e.Directory)
		},
		OnResult: func(ctx context.Context, e *domain.ResultEvent) {
			logger.DebugContext(ctx, "result", "session_id", e.SessionID, "command", e.Command,
				"exit_code", e.ExitCode, "duration", e.Duration, "err", e.Err)
		},
		OnSuggest: func(ctx context.Context, e *domain.SuggestEvent) {
			logger.DebugContext(ctx, "suggest", "session_id", e.SessionID, "partial", e.Partial,
				"local", e.Local, "remote", e.Remote, "failed", e.Failed, "stale", e.Stale)
		},
	}
}

// Chain merges hook sets; each hook runs in argument order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		if h.OnSubmit != nil {
			prev, next := out.OnSubmit, h.OnSubmit
			out.OnSubmit = func(ctx context.Context, e *domain.SubmitEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnResult != nil {
			prev, next := out.OnResult, h.OnResult
			out.OnResult = func(ctx context.Context, e *domain.ResultEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnSuggest != nil {
			prev, next := out.OnSuggest, h.OnSuggest
			out.OnSuggest = func(ctx context.Context, e *domain.SuggestEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return out
}
