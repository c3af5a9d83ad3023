package llm

import (
	"context"
	"fmt"
)

// Request contains the prompt data sent to a provider.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Response contains the raw text returned by a provider.
type Response struct {
	Content string
}

// Provider is the language-model abstraction handed to agents that opt in to
// LLM-assisted analysis. Implementations are thin, swappable I/O boundaries;
// a nil Provider means pattern-only analysis.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a provider by name. An empty name returns (nil, nil), which
// callers treat as "LLM analysis disabled".
func New(provider, model string) (Provider, error) {
	switch provider {
	case "":
		return nil, nil
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
