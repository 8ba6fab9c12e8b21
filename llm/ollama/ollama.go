package ollama

import (
	"context"

	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/provider"
)

// DefaultServerURL is used when the config sets none.
const DefaultServerURL = "http://127.0.0.1:11434"

// Provider talks to an ollama server.
type Provider struct {
	llm.Base
	adapter *llm.Adapter
}

var _ llm.Provider = (*Provider)(nil)

// New creates an ollama provider.
func New(cfg llm.Config) (*Provider, error) {
	if err := cfg.Prepare(llm.BackendOllama); err != nil {
		return nil, err
	}
	base := llm.NewBase(llm.BackendOllama, &cfg)
	url := cfg.ResolveServerURL(DefaultServerURL, base.Logger())

	adapter, err := llm.NewAdapter(dialect{}, cfg.HTTPConfig(url))
	if err != nil {
		return nil, err
	}
	return &Provider{Base: base, adapter: adapter}, nil
}

// NewProvider adapts New to provider.Factory.
func NewProvider(cfg llm.Config) (llm.Provider, error) {
	return New(cfg)
}

// IsAvailable reports whether the server lists its models.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.adapter.IsAvailable(ctx)
}

// LoadModel records the model and context window sent with later requests.
// ollama loads models on demand, so nothing is sent to the server.
func (p *Provider) LoadModel(ctx context.Context, name string, contextSize int, _ ...llm.LoadOption) error {
	p.SetModel(name, contextSize)
	p.Log(ctx, "model selected", logger.Fields(
		logger.FieldModel, name,
		logger.FieldContextSize, contextSize,
	))
	return nil
}

// Infer runs a blocking inference. Stats come from the terminal line.
func (p *Provider) Infer(ctx context.Context, prompt string, params llm.InferenceParams) (*llm.InferenceResult, error) {
	it, err := p.stream(ctx, prompt, params)
	return p.Run(ctx, it, err)
}

// Generate streams decoded lines without firing callbacks.
func (p *Provider) Generate(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	return p.stream(ctx, prompt, params.WithStream(true))
}

func (p *Provider) stream(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	if err := p.RequireModel(); err != nil {
		return nil, err
	}
	wire, dropped := Translate(params, p.LoadedModel(), p.ContextSize())
	rendered := params.Render(prompt)
	p.LogRequest(ctx, rendered, wire, dropped)

	return p.adapter.Stream(ctx, wire.Merge(map[string]any{"prompt": rendered}), nil)
}

// Close drops pooled connections.
func (p *Provider) Close(context.Context) error {
	p.adapter.Close()
	return nil
}
