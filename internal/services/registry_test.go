package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codehelperd/internal/config"
	"github.com/fyrsmithlabs/codehelperd/internal/session"
)

func testConfig() *config.Config {
	temperature := 0.3
	return &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 8080},
		LLM: config.LLMConfig{
			Model:       "gpt-4o-mini",
			APIKey:      "test-key",
			Temperature: &temperature,
			MaxTokens:   2000,
		},
		Agent: config.AgentConfig{
			MemoryWindow: 25,
			MaxRetries:   3,
			RetryDelays:  []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second},
		},
	}
}

func TestBuild(t *testing.T) {
	reg, err := Build(testConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, reg.Agent())
	assert.NotNil(t, reg.Sessions())
	assert.NotNil(t, reg.Classifier())
	assert.NotNil(t, reg.Client())
	assert.Equal(t, 25, reg.Sessions().Window())
}

func TestBuildNilConfig(t *testing.T) {
	_, err := Build(nil, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildMissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.APIKey = ""

	_, err := Build(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestNewRegistryPassthrough(t *testing.T) {
	store := session.NewStore(session.DefaultWindow, zap.NewNop())
	reg := NewRegistry(Options{Sessions: store})

	assert.Same(t, store, reg.Sessions())
	assert.Nil(t, reg.Agent())
}
