package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyPrompt: the turn carried neither text nor an attached image.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrSessionBusy: the session already has an assistant request in flight.
	// The client contract allows one outstanding request per session.
	ErrSessionBusy = errors.New("session has a request in flight")

	// ErrCredentialRequired distinguishes a credential-shaped video failure
	// from a generic one. Callers react by prompting for credential selection
	// instead of rendering an error message.
	ErrCredentialRequired = errors.New("api credential required")

	// ErrPollBudgetExceeded: the video job was abandoned after the poller's
	// attempt bound ran out.
	ErrPollBudgetExceeded = errors.New("video poll budget exceeded")

	ErrJobNotFound = errors.New("video job not found")
)
