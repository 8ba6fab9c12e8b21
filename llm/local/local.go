package local

import (
	"context"
	"path/filepath"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/provider"
)

// Provider runs completions on an in-process engine.
type Provider struct {
	llm.Base
	modelsDir string
	loader    llm.EngineLoader
	engine    llm.Engine
}

var _ llm.Provider = (*Provider)(nil)

// New creates a local provider. The models directory and an engine loader
// are required.
func New(cfg llm.Config) (*Provider, error) {
	if err := cfg.Prepare(llm.BackendLocal); err != nil {
		return nil, err
	}
	if cfg.EngineLoader == nil {
		return nil, errors.Configuration("engine_loader", "an engine loader is required for the local backend")
	}
	return &Provider{
		Base:      llm.NewBase(llm.BackendLocal, &cfg),
		modelsDir: cfg.ModelsDir,
		loader:    cfg.EngineLoader,
	}, nil
}

// NewProvider adapts New to provider.Factory.
func NewProvider(cfg llm.Config) (llm.Provider, error) {
	return New(cfg)
}

// IsAvailable reports whether an engine is loaded.
func (p *Provider) IsAvailable(context.Context) bool {
	return p.engine != nil
}

// LoadModel opens name from the models directory. The current engine is kept
// when name is already loaded with the same context size; otherwise it is
// closed before the new one is opened, and a failed load leaves no model
// loaded.
func (p *Provider) LoadModel(ctx context.Context, name string, contextSize int, opts ...llm.LoadOption) error {
	if p.engine != nil && name == p.LoadedModel() && contextSize == p.ContextSize() {
		p.Log(ctx, "model already loaded", logger.Fields(logger.FieldModel, name))
		return nil
	}
	if err := p.release(); err != nil {
		p.Logger().WithContext(ctx).Warn("closing previous engine failed", logger.ErrorFields("load_model", err))
	}

	o := llm.ApplyLoadOptions(opts...)
	spec := llm.ModelSpec{
		Path:        filepath.Join(p.modelsDir, name),
		ContextSize: contextSize,
		GPULayers:   o.GPULayers,
	}
	p.Log(ctx, "loading model", logger.Fields(
		logger.FieldModel, spec.Path,
		logger.FieldContextSize, contextSize,
		logger.FieldGPULayers, o.GPULayers,
	))

	engine, err := p.loader(ctx, spec)
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		return errors.Internal(err).WithDetail(logger.FieldModel, spec.Path)
	}
	p.engine = engine
	p.SetModel(name, contextSize)
	return nil
}

// Infer runs a blocking completion.
func (p *Provider) Infer(ctx context.Context, prompt string, params llm.InferenceParams) (*llm.InferenceResult, error) {
	it, err := p.stream(ctx, prompt, params)
	return p.Run(ctx, it, err)
}

// Generate streams one token event per engine chunk without firing callbacks.
func (p *Provider) Generate(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	return p.stream(ctx, prompt, params.WithStream(true))
}

func (p *Provider) stream(ctx context.Context, prompt string, params llm.InferenceParams) (provider.Iterator[llm.StreamEvent], error) {
	if err := p.RequireModel(); err != nil {
		return nil, err
	}
	wire, dropped := Translate(params)
	rendered := params.Render(prompt)
	p.LogRequest(ctx, rendered, wire, dropped)

	chunks, err := p.engine.CreateCompletion(ctx, rendered, wire)
	if err != nil {
		return nil, err
	}
	return llm.ReadChunks(chunks, decodeChunk), nil
}

func decodeChunk(chunk []byte) ([]llm.StreamEvent, error) {
	return []llm.StreamEvent{llm.TokenEvent(llm.ChunkText(chunk), chunk)}, nil
}

// Close releases the engine.
func (p *Provider) Close(context.Context) error {
	return p.release()
}

func (p *Provider) release() error {
	if p.engine == nil {
		return nil
	}
	err := p.engine.Close()
	p.engine = nil
	p.SetModel("", 0)
	return err
}
