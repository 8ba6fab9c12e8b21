// Package config loads locallm configuration from a YAML file, an optional
// .env file and LOCALLM_* environment variables using Viper.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("locallm", &cfg, config.WithConfigFile(path))
//
// Environment variables override file values: LOCALLM_LLM_SERVER_URL sets
// llm.server_url.
package config
