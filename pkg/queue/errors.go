package queue

import "errors"

var (
	// ErrRepositoryNil is returned when a nil repository is provided.
	ErrRepositoryNil = errors.New("queue: repository cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload.
	ErrPayloadNil = errors.New("queue: payload cannot be nil")

	// ErrNoHandlers is returned when a worker is started without handlers.
	ErrNoHandlers = errors.New("queue: no job handlers registered")

	// ErrHandlerNotFound is returned when no handler matches a job name.
	ErrHandlerNotFound = errors.New("queue: no handler registered for job name")

	// ErrNoJobToClaim signals that no job is currently due; it is the normal
	// idle condition, not a failure.
	ErrNoJobToClaim = errors.New("queue: no job to claim")

	// ErrJobNotFound is returned for operations on unknown job ids.
	ErrJobNotFound = errors.New("queue: job not found")
)
