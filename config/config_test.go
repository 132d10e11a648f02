package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "pipeline.yaml", `
agents:
  - name: HumorAgent
    path: builtin/humor
    gpt_version: gpt-4o
    params:
      style: deadpan
  - name: MarkdownLogger
    path: builtin/markdown-logger
execution_order:
  - HumorAgent
  - MarkdownLogger
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"HumorAgent", "MarkdownLogger"}, cfg.Order)

	humor, ok := cfg.Agent("HumorAgent")
	require.True(t, ok)
	assert.Equal(t, "builtin/humor", humor.Path)
	assert.Equal(t, "gpt-4o", humor.Model)
	assert.Equal(t, "deadpan", humor.Params["style"])

	_, ok = cfg.Agent("Nobody")
	assert.False(t, ok)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "pipeline.json", `{
  "agents": [
    {"name": "X", "path": "builtin/humor", "params": {}}
  ],
  "execution_order": ["X"]
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	spec, ok := cfg.Agent("X")
	require.True(t, ok)
	assert.Equal(t, "builtin/humor", spec.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "pipeline.json", `{"agents": [`)

	_, err := Load(path)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestValidateDuplicateNames(t *testing.T) {
	_, err := New([]AgentSpec{
		{Name: "X", Path: "a"},
		{Name: "X", Path: "b"},
	}, []string{"X"})

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateEmpty(t *testing.T) {
	_, err := New(nil, []string{"X"})
	assert.Error(t, err, "no agents")

	_, err = New([]AgentSpec{{Name: "X"}}, nil)
	assert.Error(t, err, "no execution order")

	_, err = New([]AgentSpec{{Path: "builtin/humor"}}, []string{"X"})
	assert.Error(t, err, "unnamed agent")
}

func TestOrderToleratesUnknownAndDuplicates(t *testing.T) {
	cfg, err := New(
		[]AgentSpec{{Name: "X", Path: "builtin/humor"}},
		[]string{"X", "Ghost", "X", "Ghost"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ghost"}, cfg.UnknownInOrder())
}
