package client

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

func ExampleAPIClient() {
	api := NewAPIClient(Config{
		APIKey:            os.Getenv("OPENAI_API_KEY"),
		RequestsPerMinute: 60,
		TokensPerMinute:   90000,
		Logger:            log.New(io.Discard),
	})
	defer api.Close()

	out, err := api.Complete(context.Background(),
		"HumorAgent",
		DefaultModel,
		"You are a comedy writer. Rewrite the text with gentle humor.",
		"The quarterly report is due on Friday.")
	if err != nil {
		fmt.Printf("completion failed: %v\n", err)
		return
	}

	fmt.Println(out)
	fmt.Printf("spent $%.4f so far\n", api.Usage().Totals().Cost)
}
