package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"agentpipe/client"

	"github.com/charmbracelet/log"
	"github.com/invopop/jsonschema"
)

// ReframerAgentName is the plan-file key for the concept reframer.
const ReframerAgentName = "ConceptReframer"

// LensReframing is the structured output from the reframer: the lens the
// model chose and the reframed text.
type LensReframing struct {
	Lens     string `json:"lens" jsonschema_description:"The philosophical, cultural, or ideological lens chosen for the reframing, e.g. Stoic, Marxist, Systems Thinking"`
	Reframed string `json:"reframed" jsonschema_description:"The central ideas of the original text reconstructed through the chosen lens"`
}

// ReframerAgent reconstructs the central ideas of the text through a
// philosophical, cultural, or ideological lens, using strict structured
// output so the lens choice is always recoverable.
type ReframerAgent struct {
	*BaseAgent
	schema any
}

func NewReframerAgent(api *client.APIClient, logger *log.Logger) *ReframerAgent {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(LensReframing{})

	config := Config{
		Name:   ReframerAgentName,
		Model:  client.DefaultModel,
		Prompt: "You are a conceptual analyst. Pick one philosophical, cultural, or ideological lens (such as Stoic, Marxist, Nietzschean, or Systems Thinking) and reconstruct the central ideas of the provided text through it. The reframing should offer a genuinely new viewpoint on the same ideas.",
	}

	return &ReframerAgent{
		BaseAgent: NewBaseAgent(config, api, logger),
		schema:    schema,
	}
}

func (r *ReframerAgent) Capabilities() Capabilities {
	return Capabilities{
		ModelOverride: true,
		Verbosity:     true,
		AnyExtra:      true,
	}
}

func (r *ReframerAgent) Transform(ctx context.Context, text string, opts Options) (Result, error) {
	model := r.effectiveModel(opts)
	prompt := r.buildPrompt(text, opts.Extra)

	out, err := r.completeStructured(ctx, model, prompt,
		"lens_reframing", "Chosen lens and the reframed text", r.schema)
	if err != nil {
		if opts.Verbosity >= 1 {
			r.logger.Warn("reframing failed", "model", model, "error", err)
		}
		return Degraded(
			fmt.Sprintf("%s (error: could not reach %s for reframing - %v)", text, model, err),
			err.Error(),
		), nil
	}

	var reframing LensReframing
	if err := json.Unmarshal([]byte(out), &reframing); err != nil {
		return Degraded(
			fmt.Sprintf("%s (error: unreadable reframing response - %v)", text, err),
			err.Error(),
		), nil
	}

	return Ok(fmt.Sprintf("Reframing through a %s lens: %s", reframing.Lens, reframing.Reframed)), nil
}

// buildPrompt folds any extra plan parameters into the prompt as guidance
// lines, so open-ended per-agent configuration reaches the model.
func (r *ReframerAgent) buildPrompt(text string, extra map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original text: '%s'", text)

	if len(extra) > 0 {
		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		// Stable prompt ordering across runs.
		sort.Strings(keys)

		b.WriteString("\nGuidance:")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n- %s: %v", k, extra[k])
		}
	}

	return b.String()
}
