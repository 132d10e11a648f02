package agent

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
)

// PersonaAgentName is the plan-file key for the persona imprinter.
const PersonaAgentName = "PersonaImprinter"

type personaTemplate struct {
	intro string
	outro string
}

var personas = map[string]personaTemplate{
	"War General": {
		intro: "Alright soldier, listen up! In the theatre of operations, this situation demands decisive action. ",
		outro: " Dismissed!",
	},
	"Zen Monk": {
		intro: "Observe the breath. In the stillness, the nature of this text reveals itself. ",
		outro: " Thus, emptiness is form.",
	},
	"Tech Futurist": {
		intro: "Extrapolating current trendlines, the paradigm shift indicated by this data is undeniable. ",
		outro: " The singularity is near.",
	},
	"Skeptical Detective": {
		intro: "Something doesn't add up here. Let's look at the facts, just the facts. ",
		outro: " Case closed... or is it?",
	},
}

// PersonaAgent wraps the text in the voice of a character archetype. It is
// a local template transform; no model call is made. A "persona" extra
// parameter pins the archetype, otherwise one is chosen at random.
type PersonaAgent struct{}

func NewPersonaAgent() *PersonaAgent {
	return &PersonaAgent{}
}

func (p *PersonaAgent) Capabilities() Capabilities {
	return Capabilities{
		ExtraParams: []string{"persona"},
	}
}

func (p *PersonaAgent) Transform(_ context.Context, text string, opts Options) (Result, error) {
	name, tmpl := pickPersona(opts)
	imprinted := fmt.Sprintf("%s'%s'%s", tmpl.intro, text, tmpl.outro)
	return Ok(fmt.Sprintf("Speaking as a %s: %s", name, imprinted)), nil
}

func pickPersona(opts Options) (string, personaTemplate) {
	if want, ok := opts.Extra["persona"].(string); ok {
		if tmpl, found := personas[want]; found {
			return want, tmpl
		}
	}

	names := make([]string, 0, len(personas))
	for name := range personas {
		names = append(names, name)
	}
	sort.Strings(names)

	name := names[rand.Intn(len(names))]
	return name, personas[name]
}
