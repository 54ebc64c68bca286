package generativeAI

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = openai.GPT4oMini

	defaultTemperature = 0.7
)

// TextGenerator sends a prompt to a generative-text service and returns the raw reply.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Provider() string
}

var (
	_ TextGenerator = (*GeminiClient)(nil)
	_ TextGenerator = (*OpenAIClient)(nil)
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", types.ErrConfigurationMissing)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Provider() string { return ProviderGemini }

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GeminiGenerateText", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", g.model),
	))
	defer span.End()

	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](defaultTemperature)}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return "", fmt.Errorf("%w: gemini: %v", types.ErrProviderError, err)
	}

	text := result.Text()
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Content generated")
	return text, nil
}

type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a chat-completion client. baseURL may be empty.
func NewOpenAIClient(apiKey, model, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", types.ErrConfigurationMissing)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (o *OpenAIClient) Provider() string { return ProviderOpenAI }

func (o *OpenAIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "OpenAIGenerateText", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", o.model),
	))
	defer span.End()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: defaultTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Chat completion failed")
		return "", fmt.Errorf("%w: openai: %v", types.ErrProviderError, err)
	}
	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, "No choices returned")
		return "", fmt.Errorf("%w: openai returned no choices", types.ErrProviderError)
	}

	text := resp.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Content generated")
	return text, nil
}

// NewTextGenerator picks the client for provider. A missing key yields
// ErrConfigurationMissing so callers can run without a narrative service.
func NewTextGenerator(ctx context.Context, provider, apiKey, model string) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderGemini:
		return NewGeminiClient(ctx, apiKey, model)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey, model, "")
	default:
		return nil, fmt.Errorf("unsupported narrative provider: %s", provider)
	}
}
