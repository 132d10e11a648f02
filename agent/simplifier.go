package agent

import (
	"context"
	"fmt"
	"strings"

	"agentpipe/client"

	"github.com/charmbracelet/log"
)

// SimplifierAgentName is the plan-file key for the text simplifier.
const SimplifierAgentName = "TextSimplifierAgent"

// SimplifierAgent rewrites the input to be concise and easy to understand
// while preserving its meaning and any humorous elements.
type SimplifierAgent struct {
	*BaseAgent
}

func NewSimplifierAgent(api *client.APIClient, logger *log.Logger) *SimplifierAgent {
	config := Config{
		Name:   SimplifierAgentName,
		Model:  client.DefaultModel,
		Prompt: "You are an editor. Rewrite the provided text to be more concise and easier to understand, while preserving its full meaning and any humorous elements. Provide only the rewritten text.",
	}
	return &SimplifierAgent{
		BaseAgent: NewBaseAgent(config, api, logger),
	}
}

func (s *SimplifierAgent) Capabilities() Capabilities {
	return Capabilities{
		ModelOverride: true,
		Verbosity:     true,
	}
}

func (s *SimplifierAgent) Transform(ctx context.Context, text string, opts Options) (Result, error) {
	model := s.effectiveModel(opts)

	out, err := s.complete(ctx, model, fmt.Sprintf("Original text: '%s'", text))
	if err != nil {
		if opts.Verbosity >= 1 {
			s.logger.Warn("simplification failed", "model", model, "error", err)
		}
		return Degraded(
			fmt.Sprintf("%s (error: could not reach %s for simplification - %v)", text, model, err),
			err.Error(),
		), nil
	}

	return Ok(strings.TrimSpace(out)), nil
}
