// Package config loads and validates the pipeline plan: which agents
// exist, where their implementations live, and the order to run them in.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AgentSpec declares one pipeline stage. Params is open-ended; whether an
// entry reaches the agent depends on the agent's declared capabilities.
type AgentSpec struct {
	Name   string         `yaml:"name" json:"name"`
	Path   string         `yaml:"path" json:"path"`
	Model  string         `yaml:"gpt_version,omitempty" json:"gpt_version,omitempty"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// PipelineConfig is the ordered plan. Order may repeat names and may name
// agents that do not exist; those are run-time warnings, not load errors.
type PipelineConfig struct {
	Agents []AgentSpec `yaml:"agents" json:"agents"`
	Order  []string    `yaml:"execution_order" json:"execution_order"`

	byName map[string]AgentSpec
}

// ParseError is fatal at startup: a plan that cannot be read or fails
// structural validation never starts a run.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid pipeline config: %v", e.Err)
	}
	return fmt.Sprintf("invalid pipeline config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a plan file. JSON or YAML is picked by extension.
func Load(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var cfg PipelineConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	if err := cfg.validate(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	cfg.index()
	return &cfg, nil
}

// New builds a plan in code, applying the same validation as Load.
func New(agents []AgentSpec, order []string) (*PipelineConfig, error) {
	cfg := &PipelineConfig{Agents: agents, Order: order}
	if err := cfg.validate(); err != nil {
		return nil, &ParseError{Err: err}
	}
	cfg.index()
	return cfg, nil
}

func (c *PipelineConfig) validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("no agents defined")
	}
	if len(c.Order) == 0 {
		return fmt.Errorf("no execution order defined")
	}

	seen := make(map[string]bool, len(c.Agents))
	for i, spec := range c.Agents {
		if spec.Name == "" {
			return fmt.Errorf("agent %d has no name", i)
		}
		if seen[spec.Name] {
			return fmt.Errorf("duplicate agent name %q", spec.Name)
		}
		seen[spec.Name] = true
	}

	return nil
}

func (c *PipelineConfig) index() {
	c.byName = make(map[string]AgentSpec, len(c.Agents))
	for _, spec := range c.Agents {
		c.byName[spec.Name] = spec
	}
}

// Agent looks up a declared agent by name.
func (c *PipelineConfig) Agent(name string) (AgentSpec, bool) {
	spec, ok := c.byName[name]
	return spec, ok
}

// UnknownInOrder lists names from the execution order with no agent
// definition, preserving order of first appearance.
func (c *PipelineConfig) UnknownInOrder() []string {
	var unknown []string
	reported := make(map[string]bool)
	for _, name := range c.Order {
		if _, ok := c.byName[name]; !ok && !reported[name] {
			unknown = append(unknown, name)
			reported[name] = true
		}
	}
	return unknown
}
