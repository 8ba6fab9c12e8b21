// Package provider holds the generic building blocks shared by every
// inference backend: the base Provider interface, pull-based iterators for
// streamed output and a registry of named factories.
//
// # Usage
//
//	reg := provider.NewRegistry[llm.Config, llm.Provider]()
//	reg.RegisterFactory("ollama", ollama.NewProvider)
//	p, err := reg.Create("ollama", cfg)
package provider
