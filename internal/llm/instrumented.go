package llm

import (
	"context"
	"time"
)

// CallRecorder receives one observation per Generate call.
type CallRecorder interface {
	ObserveLLMCall(provider string, elapsed time.Duration, err error)
}

type instrumented struct {
	Client
	provider string
	recorder CallRecorder
}

// WithRecorder wraps c so every call is reported to rec. A nil rec returns c.
func WithRecorder(c Client, provider string, rec CallRecorder) Client {
	if rec == nil {
		return c
	}
	return &instrumented{Client: c, provider: provider, recorder: rec}
}

func (i *instrumented) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	start := time.Now()
	out, err := i.Client.Generate(ctx, prompt, opts...)
	i.recorder.ObserveLLMCall(i.provider, time.Since(start), err)
	return out, err
}
