package llm

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client   *genai.Client
	defaults GenerateOptions
}

func NewGeminiClient(ctx context.Context, apiKey string, defaults GenerateOptions) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		client:   client,
		defaults: defaults,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := resolve(c.defaults, opts)
	model := c.client.GenerativeModel(o.Model)
	model.SetTemperature(float32(o.Temperature))
	if o.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(o.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt), nil
			}
		}
	}
	return "", ErrEmptyResponse
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
