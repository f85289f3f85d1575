package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewSessionState(sessionID, "/srv", now)
		state.Transcript = append(state.Transcript, domain.TranscriptEntry{
			Kind: domain.EntryCommand, Text: "ls", Directory: "/srv", Timestamp: now,
		})
		state.SubmittedHistory = []string{"ls"}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "/srv", loaded.CurrentDirectory)
		require.Len(t, loaded.Transcript, 3)
		assert.Equal(t, domain.EntryCommand, loaded.Transcript[2].Kind)
		assert.True(t, now.Equal(loaded.Transcript[2].Timestamp))
		assert.Equal(t, []string{"ls"}, loaded.SubmittedHistory)
		assert.Equal(t, -1, loaded.HistoryCursor)
	})

	t.Run("Isolation", func(t *testing.T) {
		state := domain.NewSessionState(sessionID, "/a", now)
		require.NoError(t, store.Save(ctx, sessionID, state))

		// Mutating the caller's copy must not leak into the store.
		state.CurrentDirectory = "/mutated"
		state.Transcript[0].Text = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "/a", loaded.CurrentDirectory)
		assert.NotEqual(t, "mutated", loaded.Transcript[0].Text)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSessionState(sessionID, "", now))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSessionState(id1, "", now))
		_ = store.Save(ctx, id2, domain.NewSessionState(id2, "", now))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
