// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm adapts an OpenAI-compatible chat-completion API to the
// summarizer's Backend contract. The client carries no retry policy of its
// own; a failed call is the caller's failure.
package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/tender-digest/pkg/types"
)

// Client calls a chat-completion backend.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
}

// NewClient creates a Client from configuration. BaseURL, when set, points
// the client at an OpenAI-compatible gateway.
func NewClient(cfg types.LLMConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Complete issues one chat completion with a system role and a user message
// holding the instruction and the content. An empty response is returned
// as-is; the caller decides what stands in for it.
func (c *Client) Complete(ctx context.Context, system, instruction, content string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: instruction + "\n\nText:\n" + content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
