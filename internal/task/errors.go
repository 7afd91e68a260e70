package task

import "errors"

// Common errors returned by the scheduler
var (
	// ErrQueueFull is returned by Submit when the assigned worker's inbox
	// has no room for another task
	ErrQueueFull = errors.New("worker queue is full")

	// ErrSchedulerClosed is returned for submissions after Close, and
	// resolves waiters still pending when the scheduler shuts down
	ErrSchedulerClosed = errors.New("scheduler is closed")

	// ErrCanceled resolves a handle whose request was canceled before the
	// artifact became available
	ErrCanceled = errors.New("decode request canceled")

	// ErrEmptyKey is returned when a request is submitted without a key
	ErrEmptyKey = errors.New("task key cannot be empty")

	// ErrNilDecoder is returned when constructing a scheduler without a decoder
	ErrNilDecoder = errors.New("decoder cannot be nil")

	// ErrNilLogger is returned when constructing a scheduler without a logger
	ErrNilLogger = errors.New("logger cannot be nil")
)
