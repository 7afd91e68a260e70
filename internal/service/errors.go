package service

import "errors"

// Common errors returned by the service
var (
	// ErrAlreadyCached is returned by Prewarm when the requested artifact
	// is already resident and no decode is needed
	ErrAlreadyCached = errors.New("artifact already cached")

	// ErrNilScheduler is returned when constructing a service without a scheduler
	ErrNilScheduler = errors.New("scheduler cannot be nil")

	// ErrNilCache is returned when constructing a service without a cache
	ErrNilCache = errors.New("cache cannot be nil")

	// ErrNilEmitter is returned when constructing a service without an event emitter
	ErrNilEmitter = errors.New("event emitter cannot be nil")

	// ErrNilLogger is returned when constructing a service without a logger
	ErrNilLogger = errors.New("logger cannot be nil")
)
