package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyStack is returned when a pop is attempted on an empty dialog stack.
var ErrEmptyStack = errors.New("dialog stack is empty")

// ErrStackOverflow is returned when a push would exceed the configured
// depth bound. It almost always means two dialogs begin each other in a loop.
var ErrStackOverflow = errors.New("dialog stack depth limit exceeded")

// ErrSequencerExhausted is returned when a waterfall runs past its last
// step without an explicit End or Replace. Dialog definitions must always
// terminate explicitly.
var ErrSequencerExhausted = errors.New("waterfall ended without End or Replace")

// ErrUnknownDialog is returned when a dialog ID is pushed or resumed
// without a matching registry entry.
var ErrUnknownDialog = errors.New("dialog not registered")

// ErrStateNotFound is returned by state stores when no blob exists for a key.
var ErrStateNotFound = errors.New("state not found")

// ErrRecognizerUnavailable is returned when the language service cannot
// be reached or answers with a server error.
var ErrRecognizerUnavailable = errors.New("recognizer unavailable")

// ErrNotConfigured is returned when a recognizer call is attempted
// without the required credentials. Callers are expected to check
// IsConfigured first and skip recognition entirely.
var ErrNotConfigured = errors.New("recognizer is not configured")

// MalformedResponseError reports a recognizer payload that could not be
// parsed into the expected shape. It carries a snippet of the offending
// body for diagnostics.
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed recognizer response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// PayloadDecodeError reports an interactive activity payload that failed
// boundary validation.
type PayloadDecodeError struct {
	Reason string
	Err    error
}

func (e *PayloadDecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid interactive payload: %s: %v", e.Reason, e.Err)
	}
	return "invalid interactive payload: " + e.Reason
}

func (e *PayloadDecodeError) Unwrap() error {
	return e.Err
}
