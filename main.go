package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"agentpipe/agent"
	"agentpipe/client"
	"agentpipe/config"
	"agentpipe/input"
	"agentpipe/pipeline"
	"agentpipe/registry"
	"agentpipe/repl"
	"agentpipe/speech"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvElevenLabsAPIKey = "ELEVENLABS_API_KEY"
)

var (
	flagConfig      string
	flagFeed        string
	flagAudio       string
	flagLogDir      string
	flagSpeak       bool
	flagTUI         bool
	flagRender      bool
	flagInteractive bool
	flagVerbosity   int
)

var (
	stageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB454"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	finalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agentpipe [text]",
		Short: "Run text through a configured pipeline of AI agents",
		Long: `agentpipe threads a piece of text through an ordered pipeline of
named agent transforms declared in a plan file. Each agent rewrites the
text in turn; a trailing MarkdownLogger stage records the whole run.`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "pipeline_config.yaml", "pipeline plan file (yaml or json)")
	rootCmd.Flags().StringVar(&flagFeed, "feed", "", "take the initial text from the newest item of this RSS/Atom feed")
	rootCmd.Flags().StringVar(&flagAudio, "audio", "", "take the initial text by transcribing this audio file")
	rootCmd.Flags().StringVar(&flagLogDir, "log-dir", agent.DefaultLogDir, "directory for markdown run logs")
	rootCmd.Flags().BoolVar(&flagSpeak, "speak", false, "speak the final text through ElevenLabs")
	rootCmd.Flags().BoolVar(&flagTUI, "tui", false, "show stage progress in a full-screen UI")
	rootCmd.Flags().BoolVar(&flagRender, "render", false, "render the run history as markdown after the run")
	rootCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "interactive mode: run the pipeline on each entered line")
	rootCmd.Flags().CountVarP(&flagVerbosity, "verbose", "v", "verbosity level (repeat for more)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	apiKey := os.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%s environment variable not set", EnvOpenAIAPIKey)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if flagVerbosity >= 1 {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	for _, name := range cfg.UnknownInOrder() {
		logger.Warn("execution order names an undefined agent", "agent", name)
	}

	api := client.NewAPIClient(client.Config{
		APIKey: apiKey,
		Logger: logger,
	})
	defer api.Close()

	reg := registry.New()
	agent.RegisterBuiltins(reg, api, logger, flagLogDir)

	var speaker *speech.Speaker
	if flagSpeak || flagInteractive {
		if key := os.Getenv(EnvElevenLabsAPIKey); key != "" {
			speaker = speech.NewSpeaker(key, os.Getenv(speech.EnvVoiceID), logger)
		} else if flagSpeak {
			return fmt.Errorf("--speak requires %s to be set", EnvElevenLabsAPIKey)
		}
	}

	execOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithEnvDefaultModel(os.Getenv(config.EnvDefaultModel)),
		pipeline.WithVerbosity(flagVerbosity),
	}

	ctx := context.Background()

	if flagInteractive {
		executor := pipeline.New(cfg, reg, execOpts...)
		repl.New(executor, speaker).Start(ctx)
		return nil
	}

	initialInput, err := resolveInput(ctx, args, api)
	if err != nil {
		return err
	}

	var result *pipeline.Result
	if flagTUI {
		result, err = runTUI(ctx, cfg, reg, execOpts, initialInput, api)
		if err != nil {
			return err
		}
	} else {
		opts := append(execOpts, pipeline.WithStatusFunc(printEvent))
		fmt.Printf("Initial text: %s\n\n", initialInput)
		result = pipeline.New(cfg, reg, opts...).Run(ctx, initialInput)
	}

	if result.State == pipeline.StateHalted {
		return fmt.Errorf("pipeline halted: %w", result.Err)
	}

	fmt.Println(finalStyle.Render("--- Pipeline Finished ---"))
	fmt.Printf("Final text: %s\n", result.FinalText)
	if result.LogStatus != "" {
		fmt.Println(result.LogStatus)
	}
	if result.LogErr != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("run log failed: %v", result.LogErr)))
	}

	if flagRender {
		if err := renderHistory(initialInput, result); err != nil {
			logger.Warn("failed to render run history", "error", err)
		}
	}

	if flagSpeak && speaker != nil {
		if err := speaker.Say(ctx, result.FinalText); err != nil {
			logger.Warn("speech playback failed", "error", err)
		}
	}

	return nil
}

// resolveInput picks the initial text: positional argument, feed item, or
// audio transcript, in that order of preference.
func resolveInput(ctx context.Context, args []string, api *client.APIClient) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}

	if flagFeed != "" {
		return input.NewFeedSource().LatestFromURL(flagFeed)
	}

	if flagAudio != "" {
		return speech.NewTranscriber(api).TranscribeFile(ctx, flagAudio)
	}

	return "", fmt.Errorf("no input: pass text as an argument, or use --feed, --audio, or --interactive")
}

// printEvent is the plain (non-TUI) progress printer.
func printEvent(ev pipeline.Event) {
	switch ev.Status {
	case pipeline.StatusStarted:
		fmt.Println(stageStyle.Render(fmt.Sprintf("--- Running Agent: %s ---", ev.Agent)))
	case pipeline.StatusCompleted:
		fmt.Printf("Text after %s: %s\n\n", ev.Agent, ev.Output)
	case pipeline.StatusDegraded:
		fmt.Println(warnStyle.Render(fmt.Sprintf("%s degraded: %s", ev.Agent, ev.Message)))
		fmt.Printf("Text after %s: %s\n\n", ev.Agent, ev.Output)
	case pipeline.StatusSkipped:
		fmt.Println(warnStyle.Render(fmt.Sprintf("Skipping %s (%s)", ev.Agent, ev.Message)))
	case pipeline.StatusHalted:
		fmt.Println(errorStyle.Render(fmt.Sprintf("Halted at %s: %s", ev.Agent, ev.Message)))
	case pipeline.StatusLogged:
		fmt.Println(ev.Message)
	case pipeline.StatusLogFailed:
		fmt.Println(warnStyle.Render(fmt.Sprintf("Run log failed: %s", ev.Message)))
	}
}

// renderHistory shows the run as formatted markdown in the terminal.
func renderHistory(initialInput string, result *pipeline.Result) error {
	var b strings.Builder
	b.WriteString("# Pipeline Run\n\n")
	fmt.Fprintf(&b, "## Initial Input\n\n%s\n\n", initialInput)
	for _, step := range result.History {
		fmt.Fprintf(&b, "## After %s\n\n%s\n\n", step.AgentName, step.OutputText)
	}

	out, err := glamour.Render(b.String(), "dark")
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
