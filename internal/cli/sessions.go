package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/aiterm/pkg/domain"
)

// ListSessions prints the stored session IDs with their transcript size.
func ListSessions(ctx context.Context, stack *Stack, w io.Writer) error {
	if !stack.Shared() {
		return ErrNoSessionStore
	}
	ids, err := stack.Manager.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	sort.Strings(ids)

	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		st, err := stack.Manager.Load(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "- %s (unreadable: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(w, "- %s  %s  %d entries\n", id, st.CurrentDirectory, len(st.Transcript))
	}
	return nil
}

// RemoveSessions deletes every session in ids, reporting each outcome on w.
func RemoveSessions(ctx context.Context, stack *Stack, w io.Writer, ids []string) error {
	if !stack.Shared() {
		return ErrNoSessionStore
	}
	var errs []error
	for _, id := range ids {
		if err := stack.Manager.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
