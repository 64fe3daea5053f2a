package llm

import (
	"context"
	"strings"
)

// CompletionGateway produces the assistant reply for a conversation.
type CompletionGateway interface {
	Generate(ctx context.Context, systemPrompt string, messages []Message) (*Completion, error)
}

type providerGateway struct {
	provider LLMProvider
	options  []Option
}

func NewGateway(provider LLMProvider, options ...Option) CompletionGateway {
	return &providerGateway{provider: provider, options: options}
}

// Generate makes exactly one provider call; retries are the caller's decision.
func (g *providerGateway) Generate(ctx context.Context, systemPrompt string, messages []Message) (*Completion, error) {
	history := make([]Message, 0, len(messages)+1)
	if strings.TrimSpace(systemPrompt) != "" {
		history = append(history, Message{Role: "system", Content: systemPrompt})
	}
	history = append(history, messages...)

	completion, err := g.provider.Chat(ctx, history, g.options...)
	if err != nil {
		return nil, err
	}
	if completion == nil || strings.TrimSpace(completion.Content) == "" {
		return nil, ErrEmptyCompletion
	}
	return completion, nil
}

// Func adapts a plain function into a CompletionGateway.
type Func func(ctx context.Context, systemPrompt string, messages []Message) (*Completion, error)

func (f Func) Generate(ctx context.Context, systemPrompt string, messages []Message) (*Completion, error) {
	return f(ctx, systemPrompt, messages)
}
