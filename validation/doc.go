// Package validation checks configuration values and reports failures as
// CONFIGURATION_ERROR values.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Backend   string `validate:"required,oneof=local koboldcpp goinfer ollama"`
//	    ServerURL string `validate:"omitempty,http_url"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().Required("api_key", cfg.APIKey).Validate()
package validation
