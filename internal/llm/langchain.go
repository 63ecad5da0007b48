package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// LangChainClient adapts a langchaingo model to the Client interface.
// It backs the OpenAI and Ollama providers.
type LangChainClient struct {
	model   llms.Model
	timeout time.Duration
}

// NewLangChainClient wraps a langchaingo model with a request timeout.
func NewLangChainClient(model llms.Model, timeout time.Duration) *LangChainClient {
	return &LangChainClient{model: model, timeout: timeout}
}

// Complete generates a completion for the prompt.
func (c *LangChainClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return response, nil
}
