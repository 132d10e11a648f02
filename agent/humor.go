package agent

import (
	"context"
	"fmt"
	"strings"

	"agentpipe/client"

	"github.com/charmbracelet/log"
)

// HumorAgentName is the plan-file key for the humor injector.
const HumorAgentName = "HumorAgent"

// HumorAgent appends a short witty remark to the input text.
type HumorAgent struct {
	*BaseAgent
}

func NewHumorAgent(api *client.APIClient, logger *log.Logger) *HumorAgent {
	config := Config{
		Name:   HumorAgentName,
		Model:  client.DefaultModel,
		Prompt: "You are a humor writer. Given a text, append a short, humorous, and witty remark that directly relates to or continues it. The output must be the original text followed by your humorous addition. For example, for 'It is raining', a good response is 'It is raining. Cats and dogs.' Do not add any introductory phrases.",
	}
	return &HumorAgent{
		BaseAgent: NewBaseAgent(config, api, logger),
	}
}

func (h *HumorAgent) Capabilities() Capabilities {
	return Capabilities{
		ModelOverride: true,
		Verbosity:     true,
		ExtraParams:   []string{"style"},
	}
}

func (h *HumorAgent) Transform(ctx context.Context, text string, opts Options) (Result, error) {
	model := h.effectiveModel(opts)

	prompt := fmt.Sprintf("Original text: '%s'", text)
	if style, ok := opts.Extra["style"].(string); ok && style != "" {
		prompt += fmt.Sprintf("\nThe humor should be in a %s style.", style)
	}

	out, err := h.complete(ctx, model, prompt)
	if err != nil {
		if opts.Verbosity >= 1 {
			h.logger.Warn("humor generation failed", "model", model, "error", err)
		}
		return Degraded(
			fmt.Sprintf("%s (error: could not reach %s for humor - %v)", text, model, err),
			err.Error(),
		), nil
	}

	return Ok(strings.TrimSpace(out)), nil
}
