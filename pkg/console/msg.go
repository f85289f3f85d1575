package console

import (
	"time"

	"github.com/aretw0/aiterm/pkg/domain"
)

// Msg is an event delivered to the controller.
type Msg any

// Cmd performs asynchronous work and reports back with a Msg.
// A nil result is dropped by drivers.
type Cmd func() Msg

// User events.
type (
	// InputChanged replaces the input buffer (a keystroke or paste).
	InputChanged struct{ Value string }
	// Submit executes the current input buffer (Enter).
	Submit struct{}
	// KeyUp moves the suggestion selection up, or recalls an older command.
	KeyUp struct{}
	// KeyDown moves the suggestion selection down, or recalls a newer command.
	KeyDown struct{}
	// Accept copies the selected suggestion into the input (Tab).
	Accept struct{}
	// Dismiss hides the suggestion list (Esc).
	Dismiss struct{}
	// ClearScreen empties the transcript (Ctrl+L).
	ClearScreen struct{}
	// SearchHistory recalls the newest older command containing the input (Ctrl+R).
	SearchHistory struct{}
)

// Resolution events, produced by Cmds.
type (
	// SuggestionsDue fires when the debounce delay elapsed without a newer keystroke.
	SuggestionsDue struct {
		gen     uint64
		Partial string
	}

	// SuggestionsResolved carries the remote completions for a request.
	SuggestionsResolved struct {
		gen     uint64
		Partial string
		Remote  []string
		Err     error
	}

	// ExecutionResolved carries the executor's answer for a submitted command.
	ExecutionResolved struct {
		Command  string
		Response domain.ExecuteResponse
		Err      error
		Duration time.Duration
	}

	// StatusResolved carries the executor status fetched at session start.
	StatusResolved struct {
		Status domain.Status
		Err    error
	}
)

// ParseEvent maps an event name (as used by the HTTP API) to a user Msg.
func ParseEvent(name, value string) (Msg, error) {
	switch name {
	case "input":
		return InputChanged{Value: value}, nil
	case "submit":
		return Submit{}, nil
	case "up":
		return KeyUp{}, nil
	case "down":
		return KeyDown{}, nil
	case "accept", "tab":
		return Accept{}, nil
	case "dismiss", "escape":
		return Dismiss{}, nil
	case "clear":
		return ClearScreen{}, nil
	case "search":
		return SearchHistory{}, nil
	default:
		return nil, domain.ErrUnknownEvent
	}
}
