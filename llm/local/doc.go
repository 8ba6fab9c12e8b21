// Package local implements the llm.Provider for an embedded engine.
//
// The engine itself is supplied through llm.Config.EngineLoader, so the
// package carries no cgo binding. Models are files under the configured
// models directory; loading the model that is already loaded is a no-op and
// loading a different one closes the previous engine first.
package local
