//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/agent"
)

func TestSupported(t *testing.T) {
	assert.True(t, Supported("zhipu"))
	assert.True(t, Supported("GLM"))
	assert.True(t, Supported("dashscope"))
	assert.True(t, Supported("openai-compatible"))
	assert.False(t, Supported("made-up"))
}

func TestNewKnownProviders(t *testing.T) {
	for _, provider := range []string{"zhipu", "glm", "openai", "deepseek", "moonshot", "yi", "qwen", "dashscope", "baichuan"} {
		t.Run(provider, func(t *testing.T) {
			a, err := New(agent.Settings{Provider: provider, APIKey: "test-key"})
			require.NoError(t, err)
			assert.NotNil(t, a)
		})
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(agent.Settings{Provider: "made-up", APIKey: "test-key"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")

	// Any provider works when a base URL is given.
	a, err := New(agent.Settings{Provider: "made-up", APIKey: "test-key", BaseURL: "http://localhost:9000/v1"})
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestNewCustomProviderRequiresBaseURL(t *testing.T) {
	_, err := New(agent.Settings{Provider: "custom", APIKey: "test-key"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")

	a, err := New(agent.Settings{Provider: "custom", APIKey: "test-key", BaseURL: "http://localhost:9000/v1"})
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestNewMissingAPIKey(t *testing.T) {
	t.Setenv("ZHIPU_API_KEY", "")
	t.Setenv("API_KEY", "")
	_, err := New(agent.Settings{Provider: "zhipu"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZHIPU_API_KEY")
}
