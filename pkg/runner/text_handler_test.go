package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt_Render(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"~/Desktop", "user@localhost:Desktop$"},
		{"/home/dev/project/", "user@localhost:project$"},
		{"/", "user@localhost:/$"},
		{"", "user@localhost:~$"},
		{"~", "user@localhost:~$"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPrompt.Render(tt.dir))
		})
	}

	assert.Equal(t, "ada@lab:src$", Prompt{User: "ada", Host: "lab"}.Render("/srv/src"))
}

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	at := time.Date(2025, 6, 1, 9, 30, 5, 0, time.UTC)
	h := NewTextHandler(strings.NewReader(""), out,
		WithTextHandlerRenderer(func(s string) (string, error) { return "» " + s, nil }),
		WithTimestamps(true),
		WithPrompt(Prompt{User: "ada", Host: "lab"}),
	)

	err := h.Output(context.Background(), []domain.TranscriptEntry{
		{Kind: domain.EntryCommand, Text: "ls", Directory: "/srv", Timestamp: at},
		{Kind: domain.EntryOutput, Text: "file\n", Timestamp: at},
		{Kind: domain.EntryError, Text: "Error: boom", Timestamp: at},
		{Kind: domain.EntrySystem, Text: "", Timestamp: at},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"[09:30:05] ada@lab:srv$ ls\n[09:30:05] » file\n[09:30:05] Error: boom\n",
		out.String())
}

func TestTextHandler_Input(t *testing.T) {
	h := NewTextHandler(strings.NewReader("first\r\nsecond"), io.Discard)
	ctx := context.Background()

	line, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
