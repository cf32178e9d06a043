package llm

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"

	"github.com/agenthands/graphrag/internal/logger"
)

// Ollama's default context window. Larger prompts raise num_ctx.
const ollamaDefaultContext = 4096

type OllamaClient struct {
	client   *api.Client
	defaults GenerateOptions

	// CountTokens estimates prompt size. It returns -1 when unknown.
	CountTokens func(string) int
}

// NewOllamaClient talks to baseURL, or to OLLAMA_HOST (default
// 127.0.0.1:11434) when baseURL is empty.
func NewOllamaClient(baseURL string, defaults GenerateOptions) (*OllamaClient, error) {
	var client *api.Client
	if baseURL == "" {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	} else {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, err
		}
		client = api.NewClient(u, http.DefaultClient)
	}
	return &OllamaClient{
		client:      client,
		defaults:    defaults,
		CountTokens: tiktokenCount,
	}, nil
}

func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := resolve(c.defaults, opts)

	stream := false
	req := &api.ChatRequest{
		Model: o.Model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": o.Temperature},
	}
	if o.MaxTokens > 0 {
		req.Options["num_predict"] = o.MaxTokens
	}
	if n := c.CountTokens(prompt); n >= 0 {
		if need := n + o.MaxTokens + 200; need > ollamaDefaultContext {
			req.Options["num_ctx"] = need
		}
	}

	var content string
	if err := c.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		content += cr.Message.Content
		return nil
	}); err != nil {
		return "", err
	}
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func tiktokenCount(prompt string) int {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding("o200k_base")
		if err != nil {
			logger.Warn("token encoder unavailable, using default context size", "err", err)
			return
		}
		enc = e
	})
	if enc == nil {
		return -1
	}
	return len(enc.Encode(prompt, nil, nil))
}
