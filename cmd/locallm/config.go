package main

import (
	"github.com/kbukum/locallm/config"
	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/observability"
	"github.com/kbukum/locallm/validation"
)

// appConfig is read from locallm.yml, .env and LOCALLM_* variables.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	LLM           llm.Config           `yaml:"llm" mapstructure:"llm"`
	Model         modelConfig          `yaml:"model" mapstructure:"model"`
	Params        llm.InferenceParams  `yaml:"params" mapstructure:"params"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// modelConfig names the model loaded before inference. An empty name skips
// the load.
type modelConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	ContextSize int    `yaml:"context_size" mapstructure:"context_size"`
	GPULayers   int    `yaml:"gpu_layers" mapstructure:"gpu_layers"`
}

const defaultContextSize = 2048

func (c *appConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Model.ContextSize <= 0 {
		c.Model.ContextSize = defaultContextSize
	}
}

func (c *appConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(&c.Observability); err != nil {
		return err
	}
	return validation.New().
		Min("model.gpu_layers", c.Model.GPULayers, 0).
		Validate()
}

func loadConfig(configFile, envFile string) (*appConfig, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &appConfig{}
	if err := config.LoadConfig("locallm", cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
