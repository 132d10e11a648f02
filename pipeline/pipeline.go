// Package pipeline executes an ordered plan of agent stages, threading the
// output of each stage into the next and keeping the full run history for
// the terminal logger.
package pipeline

import (
	"context"
	"fmt"

	"agentpipe/agent"
	"agentpipe/config"
	"agentpipe/registry"

	"github.com/charmbracelet/log"
)

// StepRecord is one executed stage's result, appended to the run history
// immediately after a successful invocation and never mutated.
type StepRecord = agent.Step

// State is the executor's run state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateFinished
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateHalted:
		return "halted"
	default:
		return "idle"
	}
}

// InvocationError wraps an unexpected failure raised inside a stage call.
type InvocationError struct {
	Agent string
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.Agent, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Status values carried by progress events.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusDegraded  Status = "degraded"
	StatusSkipped   Status = "skipped"
	StatusHalted    Status = "halted"
	StatusLogged    Status = "logged"
	StatusLogFailed Status = "log_failed"
)

// Event is one progress update, consumed by the CLI printer and the TUI.
type Event struct {
	Stage   int // index into the execution order
	Agent   string
	Status  Status
	Message string
	Output  string
}

// Result is the outcome of one pipeline run.
type Result struct {
	State     State
	FinalText string
	History   []StepRecord
	LogStatus string
	LogErr    error
	Err       error
}

// runContext is the transient state of one execution, owned exclusively
// by the executor and discarded at run end.
type runContext struct {
	initialInput string
	currentText  string
	history      []StepRecord
}

// Executor runs plans. One Executor may run many times; each Run gets a
// fresh runContext and resolves every stage's implementation anew.
type Executor struct {
	cfg        *config.PipelineConfig
	reg        *registry.Registry
	logger     *log.Logger
	status     func(Event)
	envModel   string
	verbosity  int
	loggerName string
	state      State
}

type Option func(*Executor)

func WithLogger(logger *log.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithStatusFunc installs a progress callback. It is invoked inline from
// the run loop, so it must not block.
func WithStatusFunc(fn func(Event)) Option {
	return func(e *Executor) { e.status = fn }
}

// WithEnvDefaultModel sets the tier-2 model default, normally taken from
// the PIPELINE_DEFAULT_MODEL environment variable.
func WithEnvDefaultModel(model string) Option {
	return func(e *Executor) { e.envModel = model }
}

func WithVerbosity(level int) Option {
	return func(e *Executor) { e.verbosity = level }
}

// WithLoggerName overrides the name treated as the terminal logger stage.
func WithLoggerName(name string) Option {
	return func(e *Executor) { e.loggerName = name }
}

func New(cfg *config.PipelineConfig, reg *registry.Registry, opts ...Option) *Executor {
	e := &Executor{
		cfg:        cfg,
		reg:        reg,
		logger:     log.Default(),
		loggerName: agent.MarkdownLoggerName,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) State() State {
	return e.state
}

func (e *Executor) emit(ev Event) {
	if e.status != nil {
		e.status(ev)
	}
}

// Run executes the plan against initialInput. Structural failures halt
// the run; degraded stage outputs keep it moving with annotated text.
func (e *Executor) Run(ctx context.Context, initialInput string) *Result {
	e.state = StateRunning

	run := &runContext{
		initialInput: initialInput,
		currentText:  initialInput,
	}

	mainStages, loggerStaged := e.partition()

	for i, name := range mainStages {
		if err := ctx.Err(); err != nil {
			return e.halt(run, name, i, err)
		}

		spec, ok := e.cfg.Agent(name)
		if !ok {
			e.logger.Warn("agent in execution order has no definition, skipping", "agent", name)
			e.emit(Event{Stage: i, Agent: name, Status: StatusSkipped, Message: "not defined"})
			continue
		}
		if spec.Path == "" {
			e.logger.Warn("agent has no path, skipping", "agent", name)
			e.emit(Event{Stage: i, Agent: name, Status: StatusSkipped, Message: "no path"})
			continue
		}

		e.emit(Event{Stage: i, Agent: name, Status: StatusStarted})

		tr, err := registry.ResolveAs[agent.Transformer](e.reg, spec.Path, "Transform")
		if err != nil {
			return e.halt(run, name, i, err)
		}

		model, source := config.ResolveModel(spec, e.envModel)
		if e.verbosity >= 1 {
			e.logger.Debug("model resolved", "agent", name, "model", model, "source", source.String())
		}

		opts := BindOptions(name, tr.Capabilities(), model, e.verbosity, spec.Params, e.logger)

		res, err := tr.Transform(ctx, run.currentText, opts)
		if err != nil {
			return e.halt(run, name, i, &InvocationError{Agent: name, Err: err})
		}

		run.currentText = res.Text
		run.history = append(run.history, StepRecord{AgentName: name, OutputText: res.Text})

		if res.Degraded {
			e.logger.Warn("agent returned degraded output", "agent", name, "reason", res.Reason)
			e.emit(Event{Stage: i, Agent: name, Status: StatusDegraded, Message: res.Reason, Output: res.Text})
		} else {
			e.emit(Event{Stage: i, Agent: name, Status: StatusCompleted, Output: res.Text})
		}
	}

	e.state = StateFinished
	result := &Result{
		State:     StateFinished,
		FinalText: run.currentText,
		History:   run.history,
	}

	if loggerStaged {
		e.record(ctx, run, result)
	}

	return result
}

// partition splits the execution order into main stages and the optional
// trailing logger stage. The logger is only special when it is defined in
// the plan AND last in the order; anywhere else it runs as an ordinary
// stage (its Transform is a documented pass-through).
func (e *Executor) partition() (mainStages []string, loggerStaged bool) {
	mainStages = e.cfg.Order

	if n := len(mainStages); n > 0 && mainStages[n-1] == e.loggerName {
		if _, defined := e.cfg.Agent(e.loggerName); defined {
			return mainStages[:n-1], true
		}
	}

	for _, name := range mainStages {
		if name == e.loggerName {
			if _, defined := e.cfg.Agent(name); defined {
				e.logger.Warn("logger is configured but not the last stage; it will run as a plain agent", "agent", e.loggerName)
			}
			break
		}
	}

	return mainStages, false
}

func (e *Executor) halt(run *runContext, name string, stage int, err error) *Result {
	e.state = StateHalted
	e.logger.Error("pipeline halted", "agent", name, "stage", stage, "error", err)
	e.emit(Event{Stage: stage, Agent: name, Status: StatusHalted, Message: err.Error()})

	return &Result{
		State:     StateHalted,
		FinalText: run.currentText,
		History:   run.history,
		Err:       err,
	}
}

// record invokes the terminal logger with the whole run, not just the
// final text. A logger failure is reported on the result but does not
// retroactively fail the already-finished run.
func (e *Executor) record(ctx context.Context, run *runContext, result *Result) {
	stage := len(e.cfg.Order) - 1
	spec, _ := e.cfg.Agent(e.loggerName)
	if spec.Path == "" {
		e.logger.Warn("logger has no path, skipping run log", "agent", e.loggerName)
		e.emit(Event{Stage: stage, Agent: e.loggerName, Status: StatusSkipped, Message: "no path"})
		return
	}

	e.emit(Event{Stage: stage, Agent: e.loggerName, Status: StatusStarted})

	rec, err := registry.ResolveAs[agent.Recorder](e.reg, spec.Path, "Record")
	if err != nil {
		result.LogErr = err
		e.logger.Error("failed to resolve logger", "agent", e.loggerName, "error", err)
		e.emit(Event{Stage: stage, Agent: e.loggerName, Status: StatusLogFailed, Message: err.Error()})
		return
	}

	status, err := rec.Record(ctx, run.initialInput, run.history, run.initialInput)
	if err != nil {
		result.LogErr = err
		e.logger.Error("run logging failed", "agent", e.loggerName, "error", err)
		e.emit(Event{Stage: stage, Agent: e.loggerName, Status: StatusLogFailed, Message: err.Error()})
		return
	}

	result.LogStatus = status
	e.emit(Event{Stage: stage, Agent: e.loggerName, Status: StatusLogged, Message: status})
}
