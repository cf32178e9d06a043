package llm

import (
	"context"
	"errors"
)

// Client is the generation collaborator: a prompt in, generated text out.
type Client interface {
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm returned no content")

type GenerateOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type GenerateOption func(*GenerateOptions)

func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens caps the length of the generated reply.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

func resolve(defaults GenerateOptions, opts []GenerateOption) GenerateOptions {
	for _, o := range opts {
		o(&defaults)
	}
	return defaults
}
