//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package agent defines the agent-under-test abstraction.
package agent

import (
	"context"
	"os"
	"strings"
	"time"
)

// Default settings applied when the caller leaves a field unset.
const (
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.3
	// DefaultMaxTokens is the default completion token cap.
	DefaultMaxTokens = 512
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxRetries is the default number of request retries.
	DefaultMaxRetries = 2
)

// Agent is the system under evaluation. One call, one prompt, one reply.
type Agent interface {
	// GenerateResponse sends the prompt and returns the agent reply.
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// Settings describes how to reach a provider-hosted agent.
type Settings struct {
	// Provider is the provider identifier, e.g. "zhipu", "openai", "deepseek".
	Provider string `json:"provider" yaml:"provider"`
	// APIKey authenticates against the provider. When empty, provider-specific
	// environment variables are consulted.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// Model overrides the provider default model.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// BaseURL overrides the provider default endpoint. Required for providers
	// without a built-in default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	// MaxTokens caps the completion length.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// Timeout bounds a single request attempt.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// MaxRetries is the number of retries after a failed attempt.
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	// ExtraHeaders are added verbatim to every request.
	ExtraHeaders map[string]string `json:"extra_headers,omitempty" yaml:"extra_headers,omitempty"`
	// ExtraBody fields are merged into every request body.
	ExtraBody map[string]any `json:"extra_body,omitempty" yaml:"extra_body,omitempty"`
}

// envKeyByProvider maps provider identifiers to their API key variables.
var envKeyByProvider = map[string]string{
	"zhipu":     "ZHIPU_API_KEY",
	"glm":       "ZHIPU_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
	"moonshot":  "MOONSHOT_API_KEY",
	"yi":        "YI_API_KEY",
	"qwen":      "QWEN_API_KEY",
	"dashscope": "DASHSCOPE_API_KEY",
	"baichuan":  "BAICHUAN_API_KEY",
}

// EnvKeyName returns the provider-specific API key environment variable, or
// the generic fallback for unknown providers.
func EnvKeyName(provider string) string {
	if name, ok := envKeyByProvider[strings.ToLower(provider)]; ok {
		return name
	}
	return "API_KEY"
}

// ResolveAPIKey returns the explicit key when set, otherwise the
// provider-specific environment variable, otherwise the generic API_KEY
// variable. An empty return means no key is available.
func ResolveAPIKey(provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if name, ok := envKeyByProvider[strings.ToLower(provider)]; ok {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return os.Getenv("API_KEY")
}

// Normalize fills unset fields with defaults and resolves the API key from
// the environment when needed. The receiver is not mutated.
func (s Settings) Normalize() Settings {
	s.APIKey = ResolveAPIKey(s.Provider, s.APIKey)
	if s.Temperature == 0 {
		s.Temperature = DefaultTemperature
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	// Zero means unset; a negative value explicitly disables retries.
	if s.MaxRetries == 0 {
		s.MaxRetries = DefaultMaxRetries
	} else if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	return s
}
