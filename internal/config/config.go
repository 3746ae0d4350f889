// Package config provides configuration loading for codehelperd.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/codehelperd/internal/logging"
)

// Config is the root configuration for the daemon.
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	LLM     LLMConfig      `koanf:"llm"`
	Agent   AgentConfig    `koanf:"agent"`
	Logging logging.Config `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LLMConfig holds completion service settings. Temperature is a pointer
// so an explicit 0 is distinguishable from unset.
type LLMConfig struct {
	BaseURL           string   `koanf:"base_url"`
	Model             string   `koanf:"model"`
	APIKey            string   `koanf:"api_key"`
	Temperature       *float64 `koanf:"temperature"`
	MaxTokens         int      `koanf:"max_tokens"`
	RequestsPerSecond float64  `koanf:"requests_per_second"`
	Burst             int      `koanf:"burst"`
}

// AgentConfig holds orchestration engine settings.
type AgentConfig struct {
	MemoryWindow int             `koanf:"memory_window"`
	MaxRetries   int             `koanf:"max_retries"`
	RetryDelays  []time.Duration `koanf:"retry_delays"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == nil {
		t := 0.3
		cfg.LLM.Temperature = &t
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2000
	}
	if cfg.LLM.RequestsPerSecond == 0 {
		cfg.LLM.RequestsPerSecond = 1
	}
	if cfg.LLM.Burst == 0 {
		cfg.LLM.Burst = 2
	}

	if cfg.Agent.MemoryWindow == 0 {
		cfg.Agent.MemoryWindow = 25
	}
	if cfg.Agent.MaxRetries == 0 {
		cfg.Agent.MaxRetries = 3
	}
	if len(cfg.Agent.RetryDelays) == 0 {
		cfg.Agent.RetryDelays = []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d", c.Server.Port)
	}
	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("llm temperature must be 0-2, got %v", *t)
	}
	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Agent.MemoryWindow < 1 {
		return fmt.Errorf("agent memory_window must be positive, got %d", c.Agent.MemoryWindow)
	}
	if c.Agent.MaxRetries < 0 {
		return fmt.Errorf("agent max_retries must be >= 0, got %d", c.Agent.MaxRetries)
	}
	for _, d := range c.Agent.RetryDelays {
		if d <= 0 {
			return fmt.Errorf("agent retry_delays must be > 0, got %v", d)
		}
	}
	return c.Logging.Validate()
}
