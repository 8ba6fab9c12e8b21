package llm

import (
	"fmt"
	"time"

	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/httpclient"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/observability"
	"github.com/kbukum/locallm/security"
	"github.com/kbukum/locallm/validation"
)

const defaultTimeout = 120 * time.Second

// Config selects a backend and configures it. Only the fields relevant to the
// chosen backend are read: ModelsDir for local, ServerURL and APIKey for the
// remote ones.
type Config struct {
	// Backend selects the provider implementation.
	Backend Backend `yaml:"backend" mapstructure:"backend" validate:"required,oneof=local koboldcpp goinfer ollama"`

	// ModelsDir is the directory holding model files (local only).
	ModelsDir string `yaml:"models_dir" mapstructure:"models_dir" validate:"required_if=Backend local"`

	// ServerURL is the backend base URL. Remote backends fall back to their
	// documented localhost address when empty.
	ServerURL string `yaml:"server_url" mapstructure:"server_url" validate:"omitempty,http_url"`

	// APIKey is sent as a bearer token. Required by goinfer.
	APIKey string `yaml:"api_key" mapstructure:"api_key" validate:"required_if=Backend goinfer"`

	// Verbose logs prompts, translated params and timings at info level.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`

	// Timeout bounds non-streaming requests such as model loads. Streams are
	// bounded only by their context. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// OnToken receives every generated fragment. Defaults to DefaultOnToken.
	OnToken OnTokenFunc `yaml:"-" mapstructure:"-"`

	// OnStartEmit is called once per call when emission starts.
	OnStartEmit OnStartEmitFunc `yaml:"-" mapstructure:"-"`

	// Logger defaults to the registered "llm" component logger.
	Logger *logger.Logger `yaml:"-" mapstructure:"-"`

	// EngineLoader opens models for the local backend.
	EngineLoader EngineLoader `yaml:"-" mapstructure:"-"`

	// Metrics, when set, records call metrics for instrumented providers.
	Metrics *observability.InferenceMetrics `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.OnToken == nil {
		c.OnToken = DefaultOnToken
	}
	if c.Logger == nil {
		c.Logger = logger.Get("llm")
	}
}

// Validate checks the fields required by the selected backend.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	err := validation.New().
		Custom(c.Timeout >= 0, "timeout", "must not be negative").
		Validate()
	if err != nil {
		return err
	}
	return c.TLS.Validate()
}

// Prepare binds the config to backend, applies defaults and validates it.
// An empty Backend is set to backend; a different one is rejected.
func (c *Config) Prepare(backend Backend) error {
	if c.Backend == "" {
		c.Backend = backend
	}
	if c.Backend != backend {
		return errors.Configuration("backend", fmt.Sprintf("config is for %s, not %s", c.Backend, backend))
	}
	c.ApplyDefaults()
	return c.Validate()
}

// Callbacks returns the configured callbacks.
func (c *Config) Callbacks() Callbacks {
	return Callbacks{OnToken: c.OnToken, OnStartEmit: c.OnStartEmit}
}

// HTTPConfig builds the transport configuration for baseURL.
func (c *Config) HTTPConfig(baseURL string) httpclient.Config {
	return httpclient.Config{
		BaseURL: baseURL,
		Timeout: c.Timeout,
		Auth:    httpclient.BearerAuth(c.APIKey),
		TLS:     c.TLS,
		Headers: c.Headers,
	}
}

// ResolveServerURL returns the configured URL, or fallback with a warning
// when none is set.
func (c *Config) ResolveServerURL(fallback string, log *logger.Logger) string {
	if c.ServerURL != "" {
		return c.ServerURL
	}
	log.Warn("no server url provided, using the default local one", logger.Fields(
		logger.FieldServerURL, fallback,
	))
	return fallback
}
