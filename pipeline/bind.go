package pipeline

import (
	"agentpipe/agent"

	"github.com/charmbracelet/log"
)

// BindOptions builds the option set for one invocation from the agent's
// declared capabilities. Anything the agent did not declare is dropped
// with a diagnostic rather than an error: an agent without model selection
// is assumed intentionally fixed-model.
func BindOptions(agentName string, caps agent.Capabilities, model string, verbosity int, params map[string]any, logger *log.Logger) agent.Options {
	if logger == nil {
		logger = log.Default()
	}

	var opts agent.Options

	if model != "" {
		if caps.ModelOverride {
			opts.Model = model
		} else {
			logger.Warn("model override dropped, agent is fixed-model", "agent", agentName, "model", model)
		}
	}

	if verbosity > 0 {
		if caps.Verbosity {
			opts.Verbosity = verbosity
		} else {
			logger.Debug("verbosity dropped, agent does not accept it", "agent", agentName)
		}
	}

	for name, value := range params {
		if !caps.AcceptsExtra(name) {
			logger.Debug("extra parameter dropped", "agent", agentName, "param", name)
			continue
		}
		if opts.Extra == nil {
			opts.Extra = make(map[string]any, len(params))
		}
		opts.Extra[name] = value
	}

	return opts
}
