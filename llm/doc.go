// Package llm defines one inference abstraction over local and remote
// text-generation backends.
//
// # Architecture
//
// The llm package provides:
//   - Generic request types: [InferenceParams], [InferenceResult], [StreamEvent]
//   - Parameter translation: [FieldMap] tables turn generic params into a
//     backend's wire vocabulary, dropping what the backend does not accept
//   - [Dialect]: how a remote backend frames and encodes its stream
//   - [Adapter]: an HTTP client plus a Dialect, yielding decoded events
//   - [Session] / [Consume]: the token dispatch loop shared by every backend
//   - [Provider]: the capability interface each backend package implements
//
// Backends live in sub-packages (koboldcpp, goinfer, ollama, local) and are
// selected from configuration by the lm package.
//
// # Usage
//
//	p, err := ollama.New(llm.Config{Backend: llm.BackendOllama})
//	err = p.LoadModel(ctx, "mistral", 4096)
//	res, err := p.Infer(ctx, "Why is the sky blue?", llm.InferenceParams{
//	    MaxTokens: util.Ptr(64),
//	})
//
// Streaming without callbacks:
//
//	it, err := p.Generate(ctx, prompt, llm.InferenceParams{})
//	defer it.Close()
//	for {
//	    ev, ok, err := it.Next(ctx)
//	    ...
//	}
package llm
