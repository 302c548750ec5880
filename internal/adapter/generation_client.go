package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrEmptyResponse reports a generation call that returned no text.
var ErrEmptyResponse = errors.New("empty generation response")

// Prompt is the rendered input of one generation call.
type Prompt struct {
	System string
	User   string
}

// GenerationClient is the text generation collaborator of the ensemble.
type GenerationClient interface {
	// Complete returns the raw text response for prompt at the given temperature.
	Complete(ctx context.Context, prompt Prompt, temperature float64) (string, error)
}

// GenerationConfig selects and configures a GenerationClient.
type GenerationConfig struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKeyEnv string
}

// Supported generation providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// NewGenerationClient builds the client for cfg.Provider. The API key is read
// from the environment variable named by cfg.APIKeyEnv.
func NewGenerationClient(ctx context.Context, cfg GenerationConfig) (GenerationClient, error) {
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(apiKey, cfg.Model, cfg.BaseURL), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}

// OpenAIClient talks to the OpenAI chat completions API or any compatible
// server (Ollama, vLLM, llama.cpp) when a base URL is set.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs an OpenAIClient.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
		slog.Warn("llm.model not set, defaulting", "model", model)
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	slog.Info("Initializing OpenAI client", "model", model, "baseURL", config.BaseURL)

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete implements GenerationClient.
func (o *OpenAIClient) Complete(ctx context.Context, prompt Prompt, temperature float64) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	slog.Debug("Received response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

// GeminiClient talks to the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient constructs a GeminiClient.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Complete implements GenerationClient.
func (g *GeminiClient) Complete(ctx context.Context, prompt Prompt, temperature float64) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	if prompt.System != "" {
		config.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt.User), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
