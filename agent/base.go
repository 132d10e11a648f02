package agent

import (
	"context"
	"time"

	"agentpipe/client"

	"github.com/charmbracelet/log"
)

// BaseAgent provides the shared OpenAI plumbing for the API-backed agents.
type BaseAgent struct {
	Config Config
	api    *client.APIClient
	logger *log.Logger
}

func NewBaseAgent(config Config, api *client.APIClient, logger *log.Logger) *BaseAgent {
	if logger == nil {
		logger = log.Default()
	}
	return &BaseAgent{
		Config: config,
		api:    api,
		logger: logger,
	}
}

// effectiveModel picks the bound model override when present, otherwise
// the agent's built-in default.
func (a *BaseAgent) effectiveModel(opts Options) string {
	if opts.Model != "" {
		return opts.Model
	}
	return a.Config.Model
}

// complete makes a chat completion request using the agent's system prompt.
func (a *BaseAgent) complete(ctx context.Context, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, 180*time.Second)
	defer cancel()

	return a.api.Complete(callCtx, a.Config.Name, model, a.Config.Prompt, prompt)
}

// completeStructured is complete with a strict JSON schema response format.
func (a *BaseAgent) completeStructured(ctx context.Context, model, prompt, schemaName, schemaDesc string, schema any) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, 180*time.Second)
	defer cancel()

	return a.api.CompleteStructured(callCtx, a.Config.Name, model, a.Config.Prompt, prompt, schemaName, schemaDesc, schema)
}
