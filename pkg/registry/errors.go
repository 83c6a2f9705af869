package registry

import "errors"

var (
	// ErrToolNotFound is returned when a tool name is absent from the live catalog
	ErrToolNotFound = errors.New("tool not found in registry")

	// ErrNoProviders is returned when the registry has no configured providers
	ErrNoProviders = errors.New("no tool providers configured")

	// ErrProviderClosed is returned when a provider connection has been torn down
	ErrProviderClosed = errors.New("tool provider connection closed")
)
