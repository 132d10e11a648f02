package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentpipe/client"
)

// Transcriber converts a recorded audio file into pipeline input text.
type Transcriber struct {
	api *client.APIClient
}

func NewTranscriber(api *client.APIClient) *Transcriber {
	return &Transcriber{api: api}
}

// TranscribeFile reads the audio file and returns its transcript.
func (t *Transcriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	text, err := t.api.Transcribe(ctx, f, filepath.Base(path))
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("transcription of %s produced no text", path)
	}
	return text, nil
}
