package domain

import "errors"

var (
	// ErrNotFound signals a missing component.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrStore signals a vector index operation failure.
	ErrStore = errors.New("store error")
	// ErrModelUnavailable signals that the embedding model failed to load.
	// Fatal at startup: the process cannot serve search or index traffic.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrEncoding signals a single failed embedding call. Not fatal;
	// the caller decides retry policy.
	ErrEncoding = errors.New("encoding failed")
)
