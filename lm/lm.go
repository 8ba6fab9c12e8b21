package lm

import (
	"context"
	"fmt"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/provider"
)

// Lm dispatches every call to the provider chosen at construction. Like the
// providers it wraps, it serves one call at a time.
type Lm struct {
	provider llm.Provider
}

// New builds the provider for cfg.Backend.
func New(cfg llm.Config) (*Lm, error) {
	if cfg.Backend == "" {
		return nil, errors.MissingField("backend")
	}
	if !registry.Has(string(cfg.Backend)) {
		return nil, errors.Configuration("backend", fmt.Sprintf("unknown backend %q, registered: %v", cfg.Backend, Backends()))
	}
	p, err := registry.Create(string(cfg.Backend), cfg)
	if err != nil {
		return nil, err
	}
	return &Lm{provider: llm.Instrument(p, cfg.Metrics)}, nil
}

// Provider returns the backend provider without instrumentation.
func (m *Lm) Provider() llm.Provider { return llm.Unwrap(m.provider) }

// Backend returns the selected backend kind.
func (m *Lm) Backend() llm.Backend { return m.provider.Backend() }

// LoadedModel returns the current model name.
func (m *Lm) LoadedModel() string { return m.provider.LoadedModel() }

// ContextSize returns the active context window.
func (m *Lm) ContextSize() int { return m.provider.ContextSize() }

// IsAvailable reports whether the backend can serve requests.
func (m *Lm) IsAvailable(ctx context.Context) bool { return m.provider.IsAvailable(ctx) }

// LoadModel loads or selects a model.
func (m *Lm) LoadModel(ctx context.Context, name string, contextSize int, opts ...llm.LoadOption) error {
	return m.provider.LoadModel(ctx, name, contextSize, opts...)
}

// Infer runs a blocking inference.
func (m *Lm) Infer(ctx context.Context, prompt string, params llm.InferenceParams) (*llm.InferenceResult, error) {
	return m.provider.Infer(ctx, prompt, params)
}

// Generate starts a streaming inference. The caller must close the iterator.
func (m *Lm) Generate(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	return m.provider.Generate(ctx, prompt, params)
}

// Abort asks the backend to stop the current generation. Backends without an
// abort endpoint return an UNSUPPORTED error.
func (m *Lm) Abort(ctx context.Context) error {
	a, ok := m.provider.(llm.Aborter)
	if !ok {
		return errors.Unsupported(m.provider.Name(), "abort")
	}
	return a.Abort(ctx)
}

// Close releases the provider.
func (m *Lm) Close(ctx context.Context) error { return m.provider.Close(ctx) }
