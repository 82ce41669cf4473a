package domain

import "errors"

// Sentinel errors shared across services and adapters.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrOriginRejected is returned when an inbound interactive request comes from an untrusted origin.
	ErrOriginRejected = errors.New("origin rejected")
	// ErrMissingSourceOrigin is returned when an inbound interactive request omits __amp_source_origin.
	ErrMissingSourceOrigin = errors.New("missing __amp_source_origin")
)
