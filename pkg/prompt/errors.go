package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C) or cancelled
	// the flow.
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoPage is returned when a step has no page registered.
	ErrNoPage = errors.New("prompt: no page for step")
)
