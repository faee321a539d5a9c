package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrSubmissionAbandoned is returned when the applicant declines to retry
	// a failed final submission.
	ErrSubmissionAbandoned = errors.New("tui: submission abandoned")
)
