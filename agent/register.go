package agent

import (
	"agentpipe/client"
	"agentpipe/registry"

	"github.com/charmbracelet/log"
)

// Built-in locations, as referenced by the path field of a plan file.
const (
	ReframerLocation   = "builtin/concept-reframer"
	HumorLocation      = "builtin/humor"
	PersonaLocation    = "builtin/persona-imprinter"
	ImageryLocation    = "builtin/imagery-enhancer"
	SimplifierLocation = "builtin/text-simplifier"
	MDLoggerLocation   = "builtin/markdown-logger"
)

// RegisterBuiltins installs factories for every built-in unit. The shared
// API client and logger are captured by the factories; construction still
// happens per resolution.
func RegisterBuiltins(r *registry.Registry, api *client.APIClient, logger *log.Logger, logDir string) {
	r.Register(ReframerLocation, func() (any, error) {
		return NewReframerAgent(api, logger), nil
	})
	r.Register(HumorLocation, func() (any, error) {
		return NewHumorAgent(api, logger), nil
	})
	r.Register(PersonaLocation, func() (any, error) {
		return NewPersonaAgent(), nil
	})
	r.Register(ImageryLocation, func() (any, error) {
		return NewImageryAgent(api, logger), nil
	})
	r.Register(SimplifierLocation, func() (any, error) {
		return NewSimplifierAgent(api, logger), nil
	})
	r.Register(MDLoggerLocation, func() (any, error) {
		return NewMarkdownLogger(logDir, logger), nil
	})
}
