package provider

import "context"

// Provider is the base interface all providers must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Closeable is implemented by providers that hold connections or engines.
type Closeable interface {
	Close(ctx context.Context) error
}

// Factory creates a provider instance from configuration.
type Factory[C any, T Provider] func(cfg C) (T, error)
