package llm

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/kbukum/locallm/provider"
)

// ModelSpec identifies a model file for an embedded engine.
type ModelSpec struct {
	// Path is the model file: the models directory joined with the name.
	Path string
	// ContextSize is the context window in tokens.
	ContextSize int
	// GPULayers is the number of layers to offload, or nil for the engine default.
	GPULayers *int
}

// Engine is an in-process inference engine with one model loaded.
type Engine interface {
	// CreateCompletion starts a completion for prompt with the translated
	// options. Each chunk is a JSON completion object holding choices[0].text.
	CreateCompletion(ctx context.Context, prompt string, opts Wire) (provider.Iterator[[]byte], error)
	// Close releases the model.
	Close() error
}

// EngineLoader opens an engine for a model.
type EngineLoader func(ctx context.Context, spec ModelSpec) (Engine, error)

// ChunkText extracts the generated fragment from an engine chunk. A missing
// or malformed fragment yields "".
func ChunkText(chunk []byte) string {
	if !gjson.ValidBytes(chunk) {
		return ""
	}
	return gjson.GetBytes(chunk, "choices.0.text").String()
}
