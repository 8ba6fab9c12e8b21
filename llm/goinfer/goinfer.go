package goinfer

import (
	"context"
	"net/http"

	"github.com/kbukum/locallm/httpclient"
	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/provider"
)

// DefaultServerURL is used when the config sets none.
const DefaultServerURL = "http://localhost:5143"

// Provider talks to a goinfer server.
type Provider struct {
	llm.Base
	adapter *llm.Adapter
}

var _ llm.Provider = (*Provider)(nil)

// New creates a goinfer provider. An API key is required.
func New(cfg llm.Config) (*Provider, error) {
	if err := cfg.Prepare(llm.BackendGoinfer); err != nil {
		return nil, err
	}
	base := llm.NewBase(llm.BackendGoinfer, &cfg)
	url := cfg.ResolveServerURL(DefaultServerURL, base.Logger())

	adapter, err := llm.NewAdapter(dialect{verbose: cfg.Verbose, log: base.Logger()}, cfg.HTTPConfig(url))
	if err != nil {
		return nil, err
	}
	return &Provider{Base: base, adapter: adapter}, nil
}

// NewProvider adapts New to provider.Factory.
func NewProvider(cfg llm.Config) (llm.Provider, error) {
	return New(cfg)
}

// IsAvailable reports whether the server answers its model state endpoint.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.adapter.IsAvailable(ctx)
}

// LoadModel asks the server to load name with the given context window.
// A non-2xx answer is a transport error and leaves the state unchanged.
func (p *Provider) LoadModel(ctx context.Context, name string, contextSize int, opts ...llm.LoadOption) error {
	o := llm.ApplyLoadOptions(opts...)
	payload := map[string]any{"name": name, "ctx": contextSize}
	if o.GPULayers != nil && *o.GPULayers > 0 {
		payload["gpu_layers"] = *o.GPULayers
	}
	p.Log(ctx, "loading model", logger.Fields(
		logger.FieldModel, name,
		logger.FieldContextSize, contextSize,
		logger.FieldGPULayers, o.GPULayers,
	))

	if _, err := p.adapter.REST().HTTP().Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   loadPath,
		Body:   payload,
	}); err != nil {
		return err
	}
	p.SetModel(name, contextSize)
	p.Logger().WithContext(ctx).Info("model loaded", logger.Fields(logger.FieldModel, name))
	return nil
}

// Infer runs a blocking inference. The result is the server's terminal
// payload.
func (p *Provider) Infer(ctx context.Context, prompt string, params llm.InferenceParams) (*llm.InferenceResult, error) {
	it, err := p.stream(ctx, prompt, params)
	return p.Run(ctx, it, err)
}

// Generate streams decoded events without firing callbacks.
func (p *Provider) Generate(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	return p.stream(ctx, prompt, params.WithStream(true))
}

// stream sends the raw prompt with its template; the server renders it.
func (p *Provider) stream(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	if err := p.RequireModel(); err != nil {
		return nil, err
	}
	wire, dropped := Translate(params)
	p.LogRequest(ctx, params.Render(prompt), wire, dropped)

	payload := wire.Merge(map[string]any{
		"prompt":   prompt,
		"template": params.TemplateOrDefault(),
	})
	return p.adapter.Stream(ctx, payload, nil)
}

// Close drops pooled connections.
func (p *Provider) Close(context.Context) error {
	p.adapter.Close()
	return nil
}
