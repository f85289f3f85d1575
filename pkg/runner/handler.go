package runner

import (
	"context"

	"github.com/aretw0/aiterm/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text and JSON modes.
type IOHandler interface {
	// Input reads the next command line. It returns io.EOF when the input is exhausted.
	Input(ctx context.Context) (string, error)

	// Output presents transcript entries in order.
	Output(ctx context.Context, entries []domain.TranscriptEntry) error

	// SystemOutput presents a message from the runner itself (e.g. goodbye, rejected input).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for styled rendering without coupling the core package.
type ContentRenderer func(string) (string, error)
