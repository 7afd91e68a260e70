package decode

import "errors"

// Common errors returned by Decoder implementations
var (
	// ErrOpenFailed is returned when the source file cannot be opened or read
	ErrOpenFailed = errors.New("cannot open source file")

	// ErrUnsupported is returned when the source file or the requested
	// output is not a format the decoder can handle
	ErrUnsupported = errors.New("unsupported source format")

	// ErrDecodeFailed is returned when the decoder ran but could not produce
	// a usable artifact from the source
	ErrDecodeFailed = errors.New("failed to decode source file")

	// ErrInvalidRequest is returned when the request itself is malformed,
	// for example an empty source path
	ErrInvalidRequest = errors.New("invalid decode request")

	// ErrInvalidConfig is returned when the decoder configuration is invalid
	ErrInvalidConfig = errors.New("invalid decoder configuration")
)
