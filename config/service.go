package config

import (
	"github.com/kbukum/locallm/errors"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/validation"
)

var environments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every locallm program shares.
// Programs embed it in their own config structs:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    LLM llm.Config `yaml:"llm" mapstructure:"llm"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "locallm"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the name, the environment and the logging settings.
func (c *ServiceConfig) Validate() error {
	err := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, environments).
		Validate()
	if err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Configuration("logging", err.Error())
	}
	return nil
}
