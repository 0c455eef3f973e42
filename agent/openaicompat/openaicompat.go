//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package openaicompat adapts any OpenAI-compatible chat completions API to
// the agent interface. Most hosted model providers expose this surface.
package openaicompat

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-agent-eval/agent"
)

// Verify that Client implements the agent.Agent interface.
var _ agent.Agent = (*Client)(nil)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	client   openai.Client
	settings agent.Settings
}

// New creates a client for the given settings. Settings are expected to be
// normalized; the base URL must point at the API root.
func New(settings agent.Settings) *Client {
	clientOpts := []option.RequestOption{
		option.WithMaxRetries(settings.MaxRetries),
		option.WithRequestTimeout(settings.Timeout),
	}
	if settings.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(settings.APIKey))
	}
	if settings.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(settings.BaseURL))
	}
	for key, value := range settings.ExtraHeaders {
		clientOpts = append(clientOpts, option.WithHeader(key, value))
	}
	for key, value := range settings.ExtraBody {
		clientOpts = append(clientOpts, option.WithJSONSet(key, value))
	}
	return &Client{
		client:   openai.NewClient(clientOpts...),
		settings: settings,
	}
}

// GenerateResponse implements the agent.Agent interface with a single-turn
// user prompt.
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	request := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.settings.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.settings.Temperature),
		MaxTokens:   openai.Int(int64(c.settings.MaxTokens)),
	}
	response, err := c.client.Chat.Completions.New(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return response.Choices[0].Message.Content, nil
}
