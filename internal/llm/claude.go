package llm

import (
	"context"

	"github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client   *anthropic.Client
	defaults GenerateOptions
}

func NewClaudeClient(apiKey string, baseURL string, defaults GenerateOptions) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if defaults.MaxTokens <= 0 {
		defaults.MaxTokens = 1000
	}
	return &ClaudeClient{
		client:   anthropic.NewClient(apiKey, opts...),
		defaults: defaults,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := resolve(c.defaults, opts)
	temp := float32(o.Temperature)
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(o.Model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens:   o.MaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", ErrEmptyResponse
}
