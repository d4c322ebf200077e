// Package config loads council settings from an optional YAML file and
// resolves the API credential from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/johnayoung/llm-council/internal/consensus"
	"github.com/johnayoung/llm-council/internal/errs"
	"github.com/johnayoung/llm-council/internal/provider"
	"github.com/johnayoung/llm-council/internal/runner"
)

const (
	// DefaultPath is read when no --config flag is given, if it exists.
	DefaultPath = "llm-council.yaml"

	// DefaultAPIKeyEnv names the environment variable holding the API key.
	DefaultAPIKeyEnv = "OPENROUTER_API_KEY"
)

const sampleYAML = `# llm-council configuration
base_url: https://openrouter.ai/api/v1
api_key_env: OPENROUTER_API_KEY

# Model that reads every answer and writes the final verdict.
judge: anthropic/claude-3.5-sonnet

timeout: 60s
judge_timeout: 90s

system_prompt: You are a helpful assistant. Be concise.

# Queried in parallel, displayed in this order.
members:
  - label: ChatGPT-4o
    model: openai/gpt-4o
  - label: Claude 3.5 Sonnet
    model: anthropic/claude-3.5-sonnet
  - label: Gemini Pro 1.5
    model: google/gemini-pro-1.5
  - label: Perplexity Sonar
    model: perplexity/sonar-reasoning
  - label: Grok Beta
    model: xai/grok-beta
`

// Config holds the runtime configuration.
type Config struct {
	BaseURL      string
	APIKeyEnv    string
	Judge        string
	Timeout      time.Duration
	JudgeTimeout time.Duration
	SystemPrompt string
	Members      []provider.Entry

	// APIKey is never read from the file; see ResolveCredential.
	APIKey string
}

// fileConfig models llm-council.yaml. Zero values mean "use the default".
type fileConfig struct {
	BaseURL      string           `yaml:"base_url"`
	APIKeyEnv    string           `yaml:"api_key_env"`
	Judge        string           `yaml:"judge"`
	Timeout      time.Duration    `yaml:"timeout"`
	JudgeTimeout time.Duration    `yaml:"judge_timeout"`
	SystemPrompt string           `yaml:"system_prompt"`
	Members      []provider.Entry `yaml:"members"`
}

// Default returns the built-in council configuration.
func Default() Config {
	return Config{
		BaseURL:      provider.DefaultOpenRouterURL,
		APIKeyEnv:    DefaultAPIKeyEnv,
		Judge:        provider.DefaultJudge,
		Timeout:      runner.DefaultTimeout,
		JudgeTimeout: consensus.DefaultTimeout,
		SystemPrompt: runner.DefaultSystemPrompt,
		Members:      provider.DefaultEntries(),
	}
}

// SampleYAML returns a commented config file equivalent to Default.
func SampleYAML() string {
	return sampleYAML
}

// Load reads path and overlays it on Default. An empty path, or the default
// path when it does not exist, yields Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, &errs.OpError{
			Op:   "config.load",
			Kind: errs.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return Config{}, &errs.OpError{
			Op:   "config.load",
			Kind: errs.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	cfg.apply(fc)

	if err := cfg.Validate(); err != nil {
		return Config{}, &errs.OpError{
			Op:   "config.load",
			Kind: errs.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return cfg, nil
}

func (c *Config) apply(fc fileConfig) {
	if s := strings.TrimSpace(fc.BaseURL); s != "" {
		c.BaseURL = s
	}
	if s := strings.TrimSpace(fc.APIKeyEnv); s != "" {
		c.APIKeyEnv = s
	}
	if s := strings.TrimSpace(fc.Judge); s != "" {
		c.Judge = s
	}
	if fc.Timeout != 0 {
		c.Timeout = fc.Timeout
	}
	if fc.JudgeTimeout != 0 {
		c.JudgeTimeout = fc.JudgeTimeout
	}
	if s := strings.TrimSpace(fc.SystemPrompt); s != "" {
		c.SystemPrompt = s
	}
	if len(fc.Members) > 0 {
		c.Members = fc.Members
	}
}

// Validate checks the settings that do not depend on the environment.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Judge) == "" {
		return errors.New("judge model is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.JudgeTimeout < 0 {
		return fmt.Errorf("judge_timeout must not be negative, got %s", c.JudgeTimeout)
	}
	if _, err := provider.NewRegistry(c.Members...); err != nil {
		return err
	}
	return nil
}

// Registry builds the fan-out set from Members.
func (c Config) Registry() (*provider.Registry, error) {
	return provider.NewRegistry(c.Members...)
}

// ResolveCredential reads the API key from the configured environment
// variable. A missing key is fatal: nothing can be queried without it.
func (c *Config) ResolveCredential(getenv func(string) string) error {
	key := strings.TrimSpace(getenv(c.APIKeyEnv))
	if key == "" {
		return &errs.OpError{
			Op:   "config.credential",
			Kind: errs.KindMissingCredential,
			Err:  fmt.Errorf("%w: set %s", errs.ErrMissingCredential, c.APIKeyEnv),
		}
	}
	c.APIKey = key
	return nil
}
