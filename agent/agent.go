package agent

import (
	"context"
)

// Transformer is the contract every pipeline stage satisfies: text in,
// text out. Expected service failures never surface as errors; they come
// back as a degraded Result carrying the annotated input text. A non-nil
// error means the stage itself broke and the run cannot continue.
type Transformer interface {
	Capabilities() Capabilities
	Transform(ctx context.Context, text string, opts Options) (Result, error)
}

// Recorder is the terminal logging contract. Unlike a Transformer it
// consumes the whole run history, not a single string, and produces a
// status message describing the artifact it wrote.
type Recorder interface {
	Record(ctx context.Context, initialInput string, steps []Step, nameHint string) (string, error)
}

// Config holds the configuration parameters for an agent.
type Config struct {
	Name   string
	Model  string
	Prompt string
}

// Capabilities declares which optional arguments a Transformer accepts.
// The executor consults this instead of inspecting the implementation, so
// an agent never receives an option it did not declare.
type Capabilities struct {
	ModelOverride bool
	Verbosity     bool
	ExtraParams   []string
	AnyExtra      bool
}

// AcceptsExtra reports whether the named extra parameter may be forwarded.
func (c Capabilities) AcceptsExtra(name string) bool {
	if c.AnyExtra {
		return true
	}
	for _, p := range c.ExtraParams {
		if p == name {
			return true
		}
	}
	return false
}

// Options carries the bound optional arguments for one invocation. Zero
// values mean "not provided": the agent's own defaults govern.
type Options struct {
	Model     string
	Verbosity int
	Extra     map[string]any
}

// Result is a stage outcome. Degraded results keep the pipeline moving
// with annotated text; the reason explains what was absorbed.
type Result struct {
	Text     string
	Degraded bool
	Reason   string
}

func Ok(text string) Result {
	return Result{Text: text}
}

func Degraded(text, reason string) Result {
	return Result{Text: text, Degraded: true, Reason: reason}
}

// Step is one executed stage's output, in run order.
type Step struct {
	AgentName  string
	OutputText string
}
