package koboldcpp

import (
	"context"

	"github.com/kbukum/locallm/httpclient/rest"
	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/provider"
)

const (
	// DefaultServerURL is used when the config sets none.
	DefaultServerURL = "http://localhost:5001"
	// DefaultContextSize is the context window assumed before LoadModel.
	DefaultContextSize = 8192
)

// Provider talks to a koboldcpp server.
type Provider struct {
	llm.Base
	adapter *llm.Adapter
}

var (
	_ llm.Provider = (*Provider)(nil)
	_ llm.Aborter  = (*Provider)(nil)
)

// New creates a koboldcpp provider.
func New(cfg llm.Config) (*Provider, error) {
	if err := cfg.Prepare(llm.BackendKoboldcpp); err != nil {
		return nil, err
	}
	base := llm.NewBase(llm.BackendKoboldcpp, &cfg)
	url := cfg.ResolveServerURL(DefaultServerURL, base.Logger())

	adapter, err := llm.NewAdapter(dialect{}, cfg.HTTPConfig(url))
	if err != nil {
		return nil, err
	}
	base.SetContextSize(DefaultContextSize)
	return &Provider{Base: base, adapter: adapter}, nil
}

// NewProvider adapts New to provider.Factory.
func NewProvider(cfg llm.Config) (llm.Provider, error) {
	return New(cfg)
}

// IsAvailable reports whether the server answers the model endpoint.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.adapter.IsAvailable(ctx)
}

type contextInfo struct {
	Value int `json:"value"`
}

type modelInfo struct {
	Result string `json:"result"`
}

// LoadModel mirrors the server's active model and context window. name and
// contextSize are only compared against what the server reports.
func (p *Provider) LoadModel(ctx context.Context, name string, contextSize int, _ ...llm.LoadOption) error {
	ctxResp, err := rest.Get[contextInfo](ctx, p.adapter.REST(), contextPath)
	if err != nil {
		return err
	}
	modelResp, err := rest.Get[modelInfo](ctx, p.adapter.REST(), modelPath)
	if err != nil {
		return err
	}

	p.SetModel(modelResp.Data.Result, ctxResp.Data.Value)
	log := p.Logger().WithContext(ctx)
	log.Info("model state mirrored from server", logger.Fields(
		logger.FieldModel, p.LoadedModel(),
		logger.FieldContextSize, p.ContextSize(),
	))
	if name != "" && name != p.LoadedModel() {
		log.Warn("server runs a different model than requested", logger.Fields("requested", name))
	}
	if contextSize > 0 && contextSize != p.ContextSize() {
		log.Debug("server context window differs from requested", logger.Fields("requested_ctx", contextSize))
	}
	return nil
}

// Infer runs a blocking inference.
func (p *Provider) Infer(ctx context.Context, prompt string, params llm.InferenceParams) (*llm.InferenceResult, error) {
	it, err := p.stream(ctx, prompt, params)
	return p.Run(ctx, it, err)
}

// Generate streams token events without firing callbacks.
func (p *Provider) Generate(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	return p.stream(ctx, prompt, params.WithStream(true))
}

func (p *Provider) stream(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	wire, dropped := Translate(params)
	rendered := params.Render(prompt)
	p.LogRequest(ctx, rendered, wire, dropped)

	payload := wire.Merge(map[string]any{
		"prompt":             rendered,
		"max_context_length": p.ContextSize(),
	})
	return p.adapter.Stream(ctx, payload, nil)
}

type abortResult struct {
	Success string `json:"success"`
}

// Abort asks the server to stop the current generation. Tokens already
// buffered may still arrive.
func (p *Provider) Abort(ctx context.Context) error {
	resp, err := rest.Post[abortResult](ctx, p.adapter.REST(), abortPath, map[string]any{})
	if err != nil {
		return err
	}
	p.Log(ctx, "abort requested", logger.Fields("success", resp.Data.Success))
	return nil
}

// Close drops pooled connections.
func (p *Provider) Close(context.Context) error {
	p.adapter.Close()
	return nil
}
