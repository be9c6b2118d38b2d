package domain

import "errors"

var (
	// ErrUnsupportedMethod means the element names a method the engine
	// does not implement. Configuration error, never retried.
	ErrUnsupportedMethod = errors.New("unsupported analysis method")
	// ErrUnsupportedFormat means no loader exists for the declared file type.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCorruptDocument means the byte stream could not be parsed as
	// its declared format.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrProvider covers failed completion or embedding calls.
	ErrProvider = errors.New("provider call failed")
	// ErrRateLimited means the provider throttled the call. Retryable
	// by the caller with backoff; the engine does not loop on it.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrValidation covers generated code failing syntax or result checks.
	ErrValidation = errors.New("validation failed")
	// ErrSandboxViolation means generated code referenced a capability
	// the sandbox does not grant.
	ErrSandboxViolation = errors.New("sandbox violation")
	// ErrSandboxTimeout means generated code exceeded its wall-clock budget.
	ErrSandboxTimeout = errors.New("sandbox timeout")

	// ErrInsufficientContent means no chunk cleared the similarity
	// floor. Reported as a successful-but-empty result, not a failure.
	ErrInsufficientContent = errors.New("insufficient content")
)
