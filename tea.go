package main

import (
	"context"
	"fmt"
	"time"

	"agentpipe/client"
	"agentpipe/config"
	"agentpipe/pipeline"
	"agentpipe/registry"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type stageStatus struct {
	name    string
	status  pipeline.Status
	message string
	spinner spinner.Model
	waiting bool
}

type runModel struct {
	stages  []stageStatus
	eventCh chan pipeline.Event
	api     *client.APIClient
	start   tea.Cmd
	result  *pipeline.Result
}

type eventMsg struct {
	event pipeline.Event
}

type runDoneMsg struct {
	result *pipeline.Result
}

// runTUI executes the pipeline under a full-screen progress display and
// returns the run result once the display exits.
func runTUI(ctx context.Context, cfg *config.PipelineConfig, reg *registry.Registry, opts []pipeline.Option, initialInput string, api *client.APIClient) (*pipeline.Result, error) {
	eventCh := make(chan pipeline.Event, 100)
	opts = append(opts, pipeline.WithStatusFunc(func(ev pipeline.Event) {
		select {
		case eventCh <- ev:
		default:
			// UI lag never blocks the run.
		}
	}))
	executor := pipeline.New(cfg, reg, opts...)

	stages := make([]stageStatus, len(cfg.Order))
	for i, name := range cfg.Order {
		s := spinner.New()
		s.Spinner = spinner.Dot
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
		stages[i] = stageStatus{
			name:    name,
			spinner: s,
			waiting: true,
		}
	}

	m := runModel{
		stages:  stages,
		eventCh: eventCh,
		api:     api,
		start: func() tea.Msg {
			return runDoneMsg{result: executor.Run(ctx, initialInput)}
		},
	}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}

	fm := final.(runModel)
	if fm.result == nil {
		return nil, fmt.Errorf("pipeline run interrupted")
	}
	return fm.result, nil
}

func (m runModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.start, m.listen()}
	for i := range m.stages {
		cmds = append(cmds, m.stages[i].spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m runModel) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.eventCh:
			return eventMsg{event: ev}
		case <-time.After(50 * time.Millisecond):
			return eventMsg{}
		}
	}
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case runDoneMsg:
		m.result = msg.result
		return m, tea.Quit

	case eventMsg:
		if msg.event.Agent != "" {
			m.applyEvent(msg.event)
		}
		cmds = append(cmds, m.listen())

	case spinner.TickMsg:
		for i := range m.stages {
			if m.stages[i].status == pipeline.StatusStarted {
				var cmd tea.Cmd
				m.stages[i].spinner, cmd = m.stages[i].spinner.Update(msg)
				if cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *runModel) applyEvent(ev pipeline.Event) {
	idx := ev.Stage
	if idx < 0 || idx >= len(m.stages) || m.stages[idx].name != ev.Agent {
		// Fall back to the first pending stage with the agent's name.
		idx = -1
		for i := range m.stages {
			if m.stages[i].name == ev.Agent && m.stages[i].waiting {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}
	}

	m.stages[idx].status = ev.Status
	m.stages[idx].message = ev.Message
	if ev.Status != pipeline.StatusStarted {
		m.stages[idx].waiting = false
	}
}

func (m runModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7D56F4")).
		MarginBottom(1)

	s := titleStyle.Render("🛠 Agent Pipeline") + "\n\n"

	for _, stage := range m.stages {
		var icon string
		switch stage.status {
		case pipeline.StatusStarted:
			icon = stage.spinner.View()
		case pipeline.StatusCompleted, pipeline.StatusLogged:
			icon = "✅"
		case pipeline.StatusDegraded:
			icon = "⚠️"
		case pipeline.StatusSkipped:
			icon = "⏭"
		case pipeline.StatusHalted, pipeline.StatusLogFailed:
			icon = "❌"
		default:
			icon = "⏳"
		}

		s += fmt.Sprintf("  %s %s", icon, stage.name)
		if stage.message != "" {
			s += fmt.Sprintf(" — %s", stage.message)
		}
		s += "\n"
	}

	totals := m.api.Usage().Totals()
	footerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).MarginTop(1)
	s += footerStyle.Render(fmt.Sprintf("💰 $%.4f  🔢 %d tokens  (ctrl+c to abort)", totals.Cost, totals.TotalTokens))
	s += "\n"

	return s
}
