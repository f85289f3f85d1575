package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBusy is returned when a command is submitted while another one is in flight.
	ErrBusy = errors.New("a command is already running")

	// ErrEmptyCommand is returned for blank submissions.
	ErrEmptyCommand = errors.New("empty command")

	// ErrMalformedResponse is returned when a remote answer does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrRemoteStatus is returned for non-2xx remote answers.
	ErrRemoteStatus = errors.New("unexpected status")

	// ErrTimeout is returned when the executor does not answer in time.
	ErrTimeout = errors.New("command timed out")

	// ErrUnknownCommand is returned by catalog lookups.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnknownEvent is returned when an event name cannot be mapped to a console message.
	ErrUnknownEvent = errors.New("unknown event")
)

// RemoteError describes a non-2xx answer from a remote service.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d", ErrRemoteStatus, e.StatusCode)
	}
	return fmt.Sprintf("%s: %d: %s", ErrRemoteStatus, e.StatusCode, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return ErrRemoteStatus
}
