package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultOpenAIModel  = "gpt-4o-mini"
	DefaultMistralModel = "mistral-small-2506"
	MistralBaseURL      = "https://api.mistral.ai/v1/"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client   *openai.Client
	model    openai.ChatModel
	provider string
}

func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) *OpenAIClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client:   &client,
		model:    openai.ChatModel(model),
		provider: "openai",
	}
}

// NewMistralClient points the OpenAI-compatible client at Mistral's API.
func NewMistralClient(apiKey, model, baseURL string, opts ...option.RequestOption) *OpenAIClient {
	if model == "" {
		model = DefaultMistralModel
	}
	if baseURL == "" {
		baseURL = MistralBaseURL
	}
	c := NewOpenAIClient(apiKey, model, append([]option.RequestOption{option.WithBaseURL(baseURL)}, opts...)...)
	c.provider = "mistral"
	return c
}

func (c *OpenAIClient) Name() string {
	return c.provider + "/" + string(c.model)
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int, temperature float64) ([]string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(temperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", c.provider, err)
	}

	completions := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		completions = append(completions, choice.Message.Content)
	}
	return completions, nil
}
