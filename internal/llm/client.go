// Package llm provides the single-shot text completion capability used by
// the topic validation and summarization services.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable wraps any upstream model failure: network errors,
// timeouts, rate limits. Callers must not interpret it as a verdict.
var ErrUnavailable = errors.New("language model unavailable")

// Client is a single-shot text completion capability: given a prompt,
// return the model's response text. Implementations enforce their own
// request timeout and report failures as ErrUnavailable.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
