// Package lm is the entry point of locallm: one dispatcher over every
// backend.
//
// New picks the backend named in the config, builds it through the backend
// registry and wraps it with tracing, request ids and metrics:
//
//	m, err := lm.New(llm.Config{Backend: llm.BackendOllama})
//	if err != nil {
//	    return err
//	}
//	defer m.Close(ctx)
//
//	if err := m.LoadModel(ctx, "llama3", 4096); err != nil {
//	    return err
//	}
//	res, err := m.Infer(ctx, "Why is the sky blue?", llm.InferenceParams{
//	    MaxTokens: util.Ptr(256),
//	})
//
// Additional backends can be plugged in with Register.
package lm
