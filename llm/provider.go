package llm

import (
	"context"

	"github.com/kbukum/locallm/provider"
)

// Provider is the capability interface every backend implements.
type Provider interface {
	provider.Provider // Name() and IsAvailable()
	provider.Closeable

	// Backend returns the backend kind.
	Backend() Backend

	// LoadModel loads or selects a model with the given context window.
	LoadModel(ctx context.Context, name string, contextSize int, opts ...LoadOption) error

	// LoadedModel returns the current model name, or "" when none is loaded.
	LoadedModel() string

	// ContextSize returns the active context window.
	ContextSize() int

	// Infer runs a blocking inference, firing the configured callbacks.
	Infer(ctx context.Context, prompt string, params InferenceParams) (*InferenceResult, error)

	// Generate starts a streaming inference and returns the decoded events
	// without firing callbacks. stream is forced to true. The iterator is
	// single-pass and must be closed.
	Generate(ctx context.Context, prompt string, params InferenceParams) (provider.Iterator[StreamEvent], error)
}

// Aborter is implemented by backends with a best-effort abort endpoint.
type Aborter interface {
	Abort(ctx context.Context) error
}

// LoadOptions are optional LoadModel settings.
type LoadOptions struct {
	// GPULayers is the number of layers to offload, or nil for the backend default.
	GPULayers *int
}

// LoadOption configures LoadModel.
type LoadOption func(*LoadOptions)

// WithGPULayers sets the number of GPU layers.
func WithGPULayers(n int) LoadOption {
	return func(o *LoadOptions) {
		o.GPULayers = &n
	}
}

// ApplyLoadOptions resolves opts.
func ApplyLoadOptions(opts ...LoadOption) LoadOptions {
	var o LoadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
