package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"agentpipe/ratelimiter"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tiktoken-go/tokenizer"
)

const (
	DefaultRequestsPerMinute = 60
	DefaultTokensPerMinute   = 90000

	// DefaultModel is the fallback when neither the plan nor the
	// environment names a model.
	DefaultModel = "gpt-4o-mini"
)

var modelPricing = map[string]struct {
	InputCostPer1K  float64
	OutputCostPer1K float64
}{
	"gpt-4o":        {0.0025, 0.01},
	"gpt-4o-mini":   {0.00015, 0.0006},
	"gpt-4-turbo":   {0.01, 0.03},
	"gpt-4":         {0.03, 0.06},
	"gpt-3.5-turbo": {0.0015, 0.002},
	"gpt-5":         {0.005, 0.015},
	"gpt-5-mini":    {0.0003, 0.0012},
	"gpt-5-nano":    {0.0001, 0.0004},
}

// APIClient wraps the OpenAI client with request/token rate limiting and
// per-caller usage accounting. All agents share one APIClient.
type APIClient struct {
	client         openai.Client
	logger         *log.Logger
	requestLimiter *ratelimiter.TokenBucket
	tokenLimiter   *ratelimiter.TokenBucket
	usage          *UsageTracker
	encoder        tokenizer.Codec
}

type Config struct {
	APIKey            string
	RequestsPerMinute int
	TokensPerMinute   int
	Logger            *log.Logger
}

func NewAPIClient(config Config) *APIClient {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if config.TokensPerMinute <= 0 {
		config.TokensPerMinute = DefaultTokensPerMinute
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	encoder, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		// Token estimates degrade to zero; rate limiting still applies
		// per request.
		encoder = nil
	}

	return &APIClient{
		client:         openai.NewClient(option.WithAPIKey(config.APIKey)),
		logger:         config.Logger,
		requestLimiter: ratelimiter.NewPerMinute(config.RequestsPerMinute),
		tokenLimiter:   ratelimiter.NewPerMinute(config.TokensPerMinute),
		usage:          NewUsageTracker(),
		encoder:        encoder,
	}
}

// Complete runs a plain chat completion and returns the first choice.
// caller names the agent for usage accounting and logs.
func (c *APIClient) Complete(ctx context.Context, caller, model, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model: model,
	}
	return c.do(ctx, caller, model, system+"\n"+user, params)
}

// CompleteStructured runs a chat completion constrained to the given JSON
// schema and returns the raw JSON content of the first choice.
func (c *APIClient) CompleteStructured(ctx context.Context, caller, model, system, user, schemaName, schemaDesc string, schema any) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model: model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName,
					Description: openai.String(schemaDesc),
					Schema:      schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	}
	return c.do(ctx, caller, model, system+"\n"+user, params)
}

func (c *APIClient) do(ctx context.Context, caller, model, input string, params openai.ChatCompletionNewParams) (string, error) {
	startTime := time.Now()

	if model == "" {
		model = DefaultModel
		params.Model = model
	}

	inputTokens := c.countTokens(input)

	if err := c.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("request rate limit exceeded: %w", err)
	}
	for i := 0; i < inputTokens; i++ {
		if err := c.tokenLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("token rate limit exceeded: %w", err)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("OpenAI API request failed",
			"caller", caller,
			"model", model,
			"input_tokens", inputTokens,
			"duration", duration,
		)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	promptTokens := int(resp.Usage.PromptTokens)
	outputTokens := int(resp.Usage.CompletionTokens)
	cost := calculateCost(model, promptTokens, outputTokens)
	c.usage.Record(caller, promptTokens, outputTokens, cost)

	c.logger.Info("OpenAI API request completed",
		"caller", caller,
		"model", model,
		"input_tokens", promptTokens,
		"output_tokens", outputTokens,
		"cost_usd", cost,
		"duration", duration,
		"request_id", resp.ID,
	)

	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts recorded audio into text.
func (c *APIClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if err := c.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("request rate limit exceeded: %w", err)
	}

	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, "application/octet-stream"),
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	return resp.Text, nil
}

func (c *APIClient) countTokens(text string) int {
	if c.encoder == nil {
		return 0
	}
	ids, _, err := c.encoder.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}

func calculateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, exists := modelPricing[model]
	if !exists {
		pricing = modelPricing[DefaultModel]
	}

	inputCost := float64(inputTokens) / 1000.0 * pricing.InputCostPer1K
	outputCost := float64(outputTokens) / 1000.0 * pricing.OutputCostPer1K

	return inputCost + outputCost
}

// Usage exposes the accumulated usage tracker.
func (c *APIClient) Usage() *UsageTracker {
	return c.usage
}

func (c *APIClient) AvailableRequestTokens() int {
	return c.requestLimiter.AvailableTokens()
}

func (c *APIClient) Close() {
	if c.requestLimiter != nil {
		c.requestLimiter.Stop()
	}
	if c.tokenLimiter != nil {
		c.tokenLimiter.Stop()
	}
}
