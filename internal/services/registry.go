// Package services assembles the daemon's dependency graph. The registry
// gives the HTTP layer and the binaries one place to reach every service
// without threading individual constructors through main.
package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codehelperd/internal/agent"
	"github.com/fyrsmithlabs/codehelperd/internal/config"
	"github.com/fyrsmithlabs/codehelperd/internal/intent"
	"github.com/fyrsmithlabs/codehelperd/internal/llm"
	"github.com/fyrsmithlabs/codehelperd/internal/session"
)

// Registry provides access to all codehelperd services.
// Use accessor methods to retrieve individual services.
type Registry interface {
	Agent() *agent.Agent
	Sessions() *session.Store
	Classifier() *intent.Classifier
	Client() llm.Client
}

// Options configures the registry with service instances.
type Options struct {
	Agent      *agent.Agent
	Sessions   *session.Store
	Classifier *intent.Classifier
	Client     llm.Client
}

// registry is the concrete implementation of Registry.
type registry struct {
	agent      *agent.Agent
	sessions   *session.Store
	classifier *intent.Classifier
	client     llm.Client
}

// NewRegistry creates a new service registry from pre-built services.
func NewRegistry(opts Options) Registry {
	return &registry{
		agent:      opts.Agent,
		sessions:   opts.Sessions,
		classifier: opts.Classifier,
		client:     opts.Client,
	}
}

// Build constructs the full service graph from configuration: session
// store, completion client, retrying invoker, classifier, and the agent
// on top of them.
func Build(cfg *config.Config, logger *zap.Logger) (Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store := session.NewStore(cfg.Agent.MemoryWindow, logger.Named("session"))

	var temperature float64
	if cfg.LLM.Temperature != nil {
		temperature = *cfg.LLM.Temperature
	}

	client, err := llm.NewOpenAIClient(llm.Config{
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		APIKey:            cfg.LLM.APIKey,
		Temperature:       temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("building completion client: %w", err)
	}

	invoker := llm.NewInvoker(cfg.Agent.MaxRetries, cfg.Agent.RetryDelays, logger.Named("llm"))
	classifier := intent.NewClassifier(client, invoker, store, logger.Named("intent"))

	a := agent.New(agent.Options{
		Client:     client,
		Invoker:    invoker,
		Store:      store,
		Classifier: classifier,
		Logger:     logger.Named("agent"),
	})

	return NewRegistry(Options{
		Agent:      a,
		Sessions:   store,
		Classifier: classifier,
		Client:     client,
	}), nil
}

func (r *registry) Agent() *agent.Agent            { return r.agent }
func (r *registry) Sessions() *session.Store       { return r.sessions }
func (r *registry) Classifier() *intent.Classifier { return r.classifier }
func (r *registry) Client() llm.Client             { return r.client }
