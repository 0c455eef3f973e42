//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvKeyName(t *testing.T) {
	assert.Equal(t, "ZHIPU_API_KEY", EnvKeyName("zhipu"))
	assert.Equal(t, "ZHIPU_API_KEY", EnvKeyName("GLM"))
	assert.Equal(t, "DEEPSEEK_API_KEY", EnvKeyName("deepseek"))
	assert.Equal(t, "API_KEY", EnvKeyName("custom"))
	assert.Equal(t, "API_KEY", EnvKeyName("something-else"))
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("ZHIPU_API_KEY", "env-zhipu")
	t.Setenv("API_KEY", "env-generic")

	assert.Equal(t, "explicit", ResolveAPIKey("zhipu", "explicit"))
	assert.Equal(t, "env-zhipu", ResolveAPIKey("zhipu", ""))
	// Unknown providers and providers without a dedicated variable fall back
	// to the generic key.
	assert.Equal(t, "env-generic", ResolveAPIKey("custom", ""))

	t.Setenv("ZHIPU_API_KEY", "")
	assert.Equal(t, "env-generic", ResolveAPIKey("zhipu", ""))
}

func TestNormalize(t *testing.T) {
	normalized := Settings{Provider: "openai", APIKey: "k"}.Normalize()
	assert.InDelta(t, DefaultTemperature, normalized.Temperature, 1e-9)
	assert.Equal(t, DefaultMaxTokens, normalized.MaxTokens)
	assert.Equal(t, DefaultTimeout, normalized.Timeout)
	assert.Equal(t, DefaultMaxRetries, normalized.MaxRetries)

	explicit := Settings{
		Provider:    "openai",
		APIKey:      "k",
		Temperature: 0.9,
		MaxTokens:   128,
		Timeout:     5 * time.Second,
		MaxRetries:  -3,
	}.Normalize()
	assert.InDelta(t, 0.9, explicit.Temperature, 1e-9)
	assert.Equal(t, 128, explicit.MaxTokens)
	assert.Equal(t, 5*time.Second, explicit.Timeout)
	assert.Equal(t, 0, explicit.MaxRetries)
}
