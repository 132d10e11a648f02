package config

import "strings"

// EnvDefaultModel is the environment variable consulted when a plan does
// not pin a model for an agent.
const EnvDefaultModel = "PIPELINE_DEFAULT_MODEL"

// notApplicable is the plan-file sentinel for "this agent takes no model".
const notApplicable = "n/a"

// ModelSource says which tier supplied the resolved model. Diagnostic
// only; it never changes behavior.
type ModelSource int

const (
	// SourceAgentDefault: neither the plan nor the environment named a
	// model; the agent's built-in default governs.
	SourceAgentDefault ModelSource = iota
	// SourceAgentConfig: the plan pinned a model for this agent.
	SourceAgentConfig
	// SourceEnvironment: the process-wide default model applied.
	SourceEnvironment
)

func (s ModelSource) String() string {
	switch s {
	case SourceAgentConfig:
		return "agent config"
	case SourceEnvironment:
		return "environment default"
	default:
		return "agent default"
	}
}

// ResolveModel merges the model tiers for one agent, highest priority
// first: per-agent plan override, then the environment default, then the
// empty string (the agent's own default governs). Pure function.
func ResolveModel(spec AgentSpec, envDefault string) (string, ModelSource) {
	override := strings.TrimSpace(spec.Model)
	if override != "" && !strings.EqualFold(override, notApplicable) {
		return override, SourceAgentConfig
	}

	if envDefault != "" {
		return envDefault, SourceEnvironment
	}

	return "", SourceAgentDefault
}
