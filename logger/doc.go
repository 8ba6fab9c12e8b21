// Package logger provides structured logging for locallm using zerolog.
//
// Logs go to stderr by default so they never interleave with tokens that
// the default callback writes to stdout.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("ollama")
//	log.Info("model loaded", logger.Fields(logger.FieldModel, name))
package logger
