package providers

import "errors"

var (
	// ErrModelNotSupported is returned when a provider is asked for a model
	// identifier outside its declared list.
	ErrModelNotSupported = errors.New("model not supported")

	// ErrModelNotFound is returned by the index when no registered provider
	// declares the requested model identifier.
	ErrModelNotFound = errors.New("model not found")

	// ErrProviderNotFound is returned by the index for unknown provider names.
	ErrProviderNotFound = errors.New("provider not found")
)
