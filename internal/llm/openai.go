package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client   *openai.Client
	defaults GenerateOptions
}

// NewOpenAIClient also serves OpenAI-compatible endpoints through baseURL.
func NewOpenAIClient(apiKey string, baseURL string, defaults GenerateOptions) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(config),
		defaults: defaults,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := resolve(c.defaults, opts)
	req := openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: float32(o.Temperature),
		MaxTokens:   o.MaxTokens,
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", ErrEmptyResponse
}
