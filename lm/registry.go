package lm

import (
	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/llm/goinfer"
	"github.com/kbukum/locallm/llm/koboldcpp"
	"github.com/kbukum/locallm/llm/local"
	"github.com/kbukum/locallm/llm/ollama"
	"github.com/kbukum/locallm/provider"
)

// Factory builds a provider from its config.
type Factory = provider.Factory[llm.Config, llm.Provider]

var registry = provider.NewRegistry[llm.Config, llm.Provider]()

func init() {
	Register(llm.BackendLocal, local.NewProvider)
	Register(llm.BackendKoboldcpp, koboldcpp.NewProvider)
	Register(llm.BackendGoinfer, goinfer.NewProvider)
	Register(llm.BackendOllama, ollama.NewProvider)
}

// Register adds a backend factory, replacing any factory of the same kind.
func Register(kind llm.Backend, factory Factory) {
	registry.RegisterFactory(string(kind), factory)
}

// Backends returns the registered backend kinds, sorted.
func Backends() []string {
	return registry.List()
}
