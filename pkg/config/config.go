// Package config loads XandAI configuration files. A config file is YAML
// with a single provider section plus optional values the factory would
// otherwise take from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xandai-project/xandai-go/pkg/factory"
)

// FileConfig is the on-disk configuration format.
type FileConfig struct {
	Provider ProviderConfig `yaml:"provider"`
	EnvFile  string         `yaml:"env_file"`
}

// ProviderConfig configures the provider the factory should build.
type ProviderConfig struct {
	Type          string                 `yaml:"type"`
	BaseURL       string                 `yaml:"base_url"`
	Model         string                 `yaml:"model"`
	Temperature   *float64               `yaml:"temperature"`
	TopP          *float64               `yaml:"top_p"`
	MaxTokens     *int                   `yaml:"max_tokens"`
	ContextLength *int                   `yaml:"context_length"`
	Timeout       time.Duration          `yaml:"timeout"`
	ExtraOptions  map[string]interface{} `yaml:"extra_options"`
}

// Load reads and parses a configuration file.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if config.Provider.Type == "" {
		config.Provider.Type = "ollama"
	}

	return &config, nil
}

// ProviderType returns the provider type named by the file.
func (c *FileConfig) ProviderType() string {
	return c.Provider.Type
}

// Options converts the provider section into factory options. Unset fields
// produce no option, leaving the factory defaults and environment fallbacks
// in effect.
func (c *FileConfig) Options() []factory.Option {
	var opts []factory.Option

	p := c.Provider
	if p.BaseURL != "" {
		opts = append(opts, factory.WithBaseURL(p.BaseURL))
	}
	if p.Model != "" {
		opts = append(opts, factory.WithModel(p.Model))
	}
	if p.Temperature != nil {
		opts = append(opts, factory.WithTemperature(*p.Temperature))
	}
	if p.TopP != nil {
		opts = append(opts, factory.WithTopP(*p.TopP))
	}
	if p.MaxTokens != nil {
		opts = append(opts, factory.WithMaxTokens(*p.MaxTokens))
	}
	if p.ContextLength != nil {
		opts = append(opts, factory.WithContextLength(*p.ContextLength))
	}
	if p.Timeout > 0 {
		opts = append(opts, factory.WithTimeout(p.Timeout))
	}
	if len(p.ExtraOptions) > 0 {
		opts = append(opts, factory.WithExtraOptions(p.ExtraOptions))
	}

	return opts
}

// Environment builds the variable source implied by the file: the optional
// env_file layered under the process environment. A relative env_file path
// is resolved by the caller's working directory.
func (c *FileConfig) Environment() (factory.Environment, error) {
	if c.EnvFile == "" {
		return factory.OSEnv{}, nil
	}

	fileEnv, err := factory.DotEnv(c.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load env file %s: %w", c.EnvFile, err)
	}
	return factory.ChainEnv{factory.OSEnv{}, fileEnv}, nil
}
