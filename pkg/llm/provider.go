package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a provider answers with no content.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Completion is one model answer plus the accounting the provider reported.
type Completion struct {
	Content      string
	Model        string
	TokensUsed   int
	FinishReason string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends the full history, system message included, and returns one completion.
	Chat(ctx context.Context, history []Message, options ...Option) (*Completion, error)
}
