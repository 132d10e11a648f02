package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// MarkdownLoggerName is the plan-file key for the run logger.
const MarkdownLoggerName = "MarkdownLogger"

// DefaultLogDir is where run logs land unless configured otherwise.
const DefaultLogDir = "pipeline_logs"

// MarkdownLogger externalizes a pipeline run as a markdown document: the
// initial input followed by one section per executed stage. It is the one
// unit with the Recorder contract; when a plan places it anywhere but last
// it runs as an ordinary stage through the placeholder Transform below.
type MarkdownLogger struct {
	dir    string
	logger *log.Logger
}

func NewMarkdownLogger(dir string, logger *log.Logger) *MarkdownLogger {
	if dir == "" {
		dir = DefaultLogDir
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MarkdownLogger{
		dir:    dir,
		logger: logger,
	}
}

func (m *MarkdownLogger) Record(_ context.Context, initialInput string, steps []Step, nameHint string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s_%s.md", timestamp, safeBase(nameHint), uuid.NewString()[:8])

	var b strings.Builder
	fmt.Fprintf(&b, "# Pipeline Run Log (%s)\n\n", timestamp)
	fmt.Fprintf(&b, "## Initial Input\n\n```\n%s\n```\n\n---\n\n", initialInput)

	for i, step := range steps {
		name := step.AgentName
		if name == "" {
			name = fmt.Sprintf("Unknown Agent %d", i+1)
		}
		fmt.Fprintf(&b, "## After Agent: %s\n\n```\n%s\n```\n\n---\n\n", name, step.OutputText)
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(m.dir, filename)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write run log: %w", err)
	}

	m.logger.Debug("run log written", "path", path, "steps", len(steps))
	return fmt.Sprintf("log saved to: %s", path), nil
}

func (m *MarkdownLogger) Capabilities() Capabilities {
	return Capabilities{}
}

// Transform is the fallback when the logger is scheduled as a non-terminal
// stage. It has no history to record there, so it passes the text through
// unchanged and flags the step as degraded.
func (m *MarkdownLogger) Transform(_ context.Context, text string, _ Options) (Result, error) {
	return Degraded(text, "MarkdownLogger scheduled as a transform stage; no history to record"), nil
}

// safeBase reduces the name hint to a short filesystem-friendly slug.
func safeBase(hint string) string {
	if len(hint) > 30 {
		hint = hint[:30]
	}

	var b strings.Builder
	for _, c := range hint {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('_')
		default:
			b.WriteRune('_')
		}
	}

	base := strings.Trim(b.String(), "_")
	if base == "" {
		return "log"
	}
	return base
}
