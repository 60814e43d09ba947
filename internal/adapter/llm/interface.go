// Package llm provides an abstraction for language-generation providers.
package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyCompletion is returned when the provider answers without text.
var ErrEmptyCompletion = errors.New("llm returned no content")

// ErrNotConfigured is returned when no provider client is available.
var ErrNotConfigured = errors.New("llm not configured")

// LLMClient defines the interface for LLM API operations.
type LLMClient interface {
	// CreateChatCompletion sends a chat completion request (non-streaming).
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Ensure Client implements LLMClient interface.
var _ LLMClient = (*Client)(nil)

// Generator turns a system prompt and a user message into text.
type Generator struct {
	client      LLMClient
	model       string
	maxTokens   int
	temperature float64
}

// NewGenerator wraps a client with the model settings used by the dispatcher.
func NewGenerator(client LLMClient, model string) *Generator {
	return &Generator{
		client:      client,
		model:       model,
		maxTokens:   300,
		temperature: 0.7,
	}
}

// Generate asks the provider for a reply to message under systemPrompt.
func (g *Generator) Generate(ctx context.Context, systemPrompt, message string) (string, error) {
	if g == nil || g.client == nil {
		return "", ErrNotConfigured
	}
	maxTokens := g.maxTokens
	temperature := g.temperature
	resp, err := g.client.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	for _, choice := range resp.Choices {
		if choice.Message != nil && strings.TrimSpace(choice.Message.Content) != "" {
			return choice.Message.Content, nil
		}
	}
	return "", ErrEmptyCompletion
}
