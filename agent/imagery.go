package agent

import (
	"context"
	"fmt"
	"strings"

	"agentpipe/client"

	"github.com/charmbracelet/log"
)

// ImageryAgentName is the plan-file key for the imagery enhancer.
const ImageryAgentName = "ImageryEnhancer"

// ImageryAgent enriches text with concrete sensory descriptions. It is
// pinned to its built-in model: it declares no optional capabilities, so
// plan-level model overrides and verbosity never reach it.
type ImageryAgent struct {
	*BaseAgent
}

func NewImageryAgent(api *client.APIClient, logger *log.Logger) *ImageryAgent {
	config := Config{
		Name:   ImageryAgentName,
		Model:  client.DefaultModel,
		Prompt: "Enhance the provided text with concrete sensory descriptions (sight, sound, texture, motion) to make it more vivid. Provide only the enhanced text.",
	}
	return &ImageryAgent{
		BaseAgent: NewBaseAgent(config, api, logger),
	}
}

func (i *ImageryAgent) Capabilities() Capabilities {
	return Capabilities{}
}

func (i *ImageryAgent) Transform(ctx context.Context, text string, _ Options) (Result, error) {
	out, err := i.complete(ctx, i.Config.Model, fmt.Sprintf("Original text: '%s'", text))
	if err != nil {
		return Degraded(
			fmt.Sprintf("%s (error: could not reach %s for enhancement - %v)", text, i.Config.Model, err),
			err.Error(),
		), nil
	}

	return Ok(strings.TrimSpace(out)), nil
}
