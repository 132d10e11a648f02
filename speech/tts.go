// Package speech holds the voice collaborators around the pipeline:
// text-to-speech playback of the final output and transcription of
// recorded audio into initial input.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultVoiceID is the "Rachel" voice.
const DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

// EnvVoiceID overrides the voice used for playback.
const EnvVoiceID = "ELEVENLABS_VOICE_ID"

const ttsEndpoint = "https://api.elevenlabs.io/v1/text-to-speech/%s"

// Speaker synthesizes speech through the ElevenLabs API and plays it with
// whatever audio player the host provides.
type Speaker struct {
	apiKey  string
	voiceID string
	http    *http.Client
	logger  *log.Logger
}

func NewSpeaker(apiKey, voiceID string, logger *log.Logger) *Speaker {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Speaker{
		apiKey:  apiKey,
		voiceID: voiceID,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// Synthesize returns MP3 audio for the given text.
func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": "eleven_monolingual_v1",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf(ttsEndpoint, s.voiceID), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("speech synthesis failed: %s: %s", resp.Status, body)
	}

	return io.ReadAll(resp.Body)
}

// Play writes the audio to a temporary file and hands it to the host's
// player, blocking until playback finishes.
func (s *Speaker) Play(audio []byte) error {
	f, err := os.CreateTemp("", "agentpipe-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp audio file: %w", err)
	}
	f.Close()

	name, args := playerCommand(f.Name())
	if name == "" {
		return fmt.Errorf("no audio player found on this system")
	}

	if err := exec.Command(name, args...).Run(); err != nil {
		return fmt.Errorf("audio playback failed: %w", err)
	}
	return nil
}

// Say synthesizes and plays the text in one step.
func (s *Speaker) Say(ctx context.Context, text string) error {
	audio, err := s.Synthesize(ctx, text)
	if err != nil {
		return err
	}

	s.logger.Debug("playing synthesized speech", "bytes", len(audio), "voice", s.voiceID)
	return s.Play(audio)
}

func playerCommand(path string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "afplay", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "/wait", path}
	default:
		for _, candidate := range []string{"mpg123", "mpv", "ffplay"} {
			if _, err := exec.LookPath(candidate); err == nil {
				if candidate == "ffplay" {
					return candidate, []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
				}
				return candidate, []string{"-q", path}
			}
		}
		return "", nil
	}
}
