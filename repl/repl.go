// Package repl is the interactive mode: each entered line is run through
// the full pipeline, with optional speech playback of the final text.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"agentpipe/pipeline"
	"agentpipe/speech"
)

type REPL struct {
	executor *pipeline.Executor
	speaker  *speech.Speaker
	scanner  *bufio.Scanner
}

// New builds a REPL around an executor. speaker may be nil to disable
// playback.
func New(executor *pipeline.Executor, speaker *speech.Speaker) *REPL {
	return &REPL{
		executor: executor,
		speaker:  speaker,
		scanner:  bufio.NewScanner(os.Stdin),
	}
}

func (r *REPL) Start(ctx context.Context) {
	fmt.Println("🔁 Agent Pipeline REPL")
	fmt.Println("Each line you enter is run through the configured pipeline.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  <text> - Run the pipeline on the text")
	fmt.Println("  help - Show this help message")
	fmt.Println("  quit - Exit the REPL")
	fmt.Println()

	for {
		fmt.Print("📝 Text to process: ")
		if !r.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(r.scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "help":
			r.showHelp()
		case "quit", "exit", "q":
			fmt.Println("👋 Goodbye!")
			return
		default:
			r.handleInput(ctx, input)
		}
	}
}

func (r *REPL) handleInput(ctx context.Context, text string) {
	result := r.executor.Run(ctx, text)

	if result.State == pipeline.StateHalted {
		fmt.Printf("❌ Pipeline halted: %v\n\n", result.Err)
		return
	}

	fmt.Println("✨ Final text:")
	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Println(result.FinalText)
	fmt.Println("─────────────────────────────────────────────────────────────")

	if result.LogStatus != "" {
		fmt.Printf("🗒  %s\n", result.LogStatus)
	}
	if result.LogErr != nil {
		fmt.Printf("⚠️  Run log failed: %v\n", result.LogErr)
	}

	if r.speaker != nil {
		fmt.Println("🔊 Speaking final text...")
		if err := r.speaker.Say(ctx, result.FinalText); err != nil {
			fmt.Printf("⚠️  Speech playback failed: %v\n", err)
		}
	}
	fmt.Println()
}

func (r *REPL) showHelp() {
	fmt.Println("🆘 Enter any text to push it through the pipeline stages in order.")
	fmt.Println("   The configured agents transform the text one after another;")
	fmt.Println("   a trailing MarkdownLogger writes the full run history to disk.")
	fmt.Println("   quit - Exit the REPL")
}
