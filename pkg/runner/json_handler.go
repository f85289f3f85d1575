package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/aiterm/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Every transcript entry is written as one JSON object.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// jsonCommand is the object form of an input line.
type jsonCommand struct {
	Command string `json:"command"`
}

// systemLine is written for runner messages.
type systemLine struct {
	System string `json:"system"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Input accepts a JSON string, an object with a "command" field or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}
	var cmd jsonCommand
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &cmd); err == nil {
			return cmd.Command, nil
		}
	}

	// Fallback: return raw text (e.g. if they just sent plain text)
	return text, nil
}

// Output encodes each entry on its own line.
func (h *JSONHandler) Output(ctx context.Context, entries []domain.TranscriptEntry) error {
	for _, e := range entries {
		if err := h.Encoder.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// SystemOutput encodes msg as {"system": msg}.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(systemLine{System: msg})
}
