package llm

import (
	"context"
	"time"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/provider"
	"github.com/kbukum/locallm/util"
)

// maxDebugPrompt caps the prompt logged at debug level.
const maxDebugPrompt = 256

// Base holds the state shared by every backend: kind, loaded model, context
// window, verbosity and callbacks. It is not safe for concurrent use.
type Base struct {
	backend     Backend
	loadedModel string
	contextSize int
	verbose     bool
	callbacks   Callbacks
	log         *logger.Logger
}

// NewBase builds the shared state from a defaulted config.
func NewBase(backend Backend, cfg *Config) Base {
	log := cfg.Logger
	if log == nil {
		log = logger.Get(string(backend))
	}
	return Base{
		backend:   backend,
		verbose:   cfg.Verbose,
		callbacks: cfg.Callbacks(),
		log:       log.WithBackend(string(backend)),
	}
}

// Name returns the backend name.
func (b *Base) Name() string { return string(b.backend) }

// Backend returns the backend kind.
func (b *Base) Backend() Backend { return b.backend }

// LoadedModel returns the current model name.
func (b *Base) LoadedModel() string { return b.loadedModel }

// ContextSize returns the active context window.
func (b *Base) ContextSize() int { return b.contextSize }

// Verbose reports whether verbose logging is on.
func (b *Base) Verbose() bool { return b.verbose }

// Logger returns the backend logger.
func (b *Base) Logger() *logger.Logger { return b.log }

// SetModel records the loaded model and context window.
func (b *Base) SetModel(name string, contextSize int) {
	b.loadedModel = name
	b.contextSize = contextSize
}

// SetContextSize records the context window.
func (b *Base) SetContextSize(contextSize int) {
	b.contextSize = contextSize
}

// RequireModel returns a STATE_ERROR when no model is loaded.
func (b *Base) RequireModel() error {
	if b.loadedModel == "" {
		return errors.NoModelLoaded(string(b.backend))
	}
	return nil
}

// Log logs at info when verbose and at debug otherwise.
func (b *Base) Log(ctx context.Context, msg string, fields map[string]interface{}) {
	log := b.log.WithContext(ctx)
	if b.verbose {
		log.Info(msg, fields)
		return
	}
	log.Debug(msg, fields)
}

// LogRequest logs the rendered prompt, the translated params and any
// parameters the backend does not accept.
func (b *Base) LogRequest(ctx context.Context, prompt string, wire Wire, dropped []string) {
	if !b.verbose {
		prompt = util.Truncate(prompt, maxDebugPrompt)
	}
	b.Log(ctx, "running inference", logger.Fields(
		logger.FieldModel, b.loadedModel,
		logger.FieldPrompt, prompt,
		logger.FieldParams, map[string]any(wire),
	))
	if len(dropped) > 0 {
		b.log.WithContext(ctx).Debug("parameters not supported by backend were dropped", logger.Fields(
			logger.FieldDropped, dropped,
		))
	}
}

// Run consumes a stream through the dispatch loop with the configured
// callbacks. It is the blocking side of every backend's Infer.
func (b *Base) Run(ctx context.Context, it provider.Iterator[StreamEvent], err error) (*InferenceResult, error) {
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := Consume(ctx, it, b.callbacks)
	if err != nil {
		b.log.WithContext(ctx).Debug("inference failed", logger.ErrorFields("infer", err))
		return nil, err
	}
	fields := logger.DurationFields("infer", time.Since(start))
	fields["chars"] = len(res.Text)
	fields["stats"] = util.SortedKeys(res.Stats)
	b.Log(ctx, "inference complete", fields)
	return res, nil
}
