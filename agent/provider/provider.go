//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package provider builds agents from provider identifiers.
//
// Known providers come with default endpoints and models; any other provider
// is accepted as long as a base URL is supplied, since every supported
// backend speaks the OpenAI chat completions dialect.
package provider

import (
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-agent-eval/agent"
	"trpc.group/trpc-go/trpc-agent-eval/agent/openaicompat"
)

// defaults holds the per-provider endpoint and model fallbacks.
type defaults struct {
	baseURL string
	model   string
}

var providerDefaults = map[string]defaults{
	"zhipu":             {baseURL: "https://open.bigmodel.cn/api/paas/v4", model: "glm-4.5-flash"},
	"glm":               {baseURL: "https://open.bigmodel.cn/api/paas/v4", model: "glm-4.5-flash"},
	"openai":            {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini"},
	"deepseek":          {baseURL: "https://api.deepseek.com/v1", model: "deepseek-chat"},
	"moonshot":          {baseURL: "https://api.moonshot.cn/v1", model: "moonshot-v1-8k"},
	"yi":                {baseURL: "https://api.lingyiwanwu.com/v1", model: "yi-lightning"},
	"qwen":              {baseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1", model: "qwen-plus"},
	"dashscope":         {baseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1", model: "qwen-plus"},
	"baichuan":          {baseURL: "https://api.baichuan-ai.com/v1", model: "Baichuan2-Turbo"},
	"custom":            {},
	"openai-compatible": {},
}

// Supported reports whether the provider identifier is known.
func Supported(provider string) bool {
	_, ok := providerDefaults[strings.ToLower(provider)]
	return ok
}

// New builds an agent for the given settings. Unknown providers need an
// explicit base URL; known providers fall back to their default endpoint and
// model. Settings are normalized before use.
func New(settings agent.Settings) (agent.Agent, error) {
	normalized := settings.Normalize()
	key := strings.ToLower(normalized.Provider)

	d, known := providerDefaults[key]
	if !known && normalized.BaseURL == "" {
		return nil, fmt.Errorf("unsupported provider: %s", settings.Provider)
	}
	if normalized.BaseURL == "" {
		normalized.BaseURL = d.baseURL
	}
	if normalized.Model == "" {
		normalized.Model = d.model
	}
	if normalized.BaseURL == "" {
		return nil, fmt.Errorf("provider %s requires an explicit base_url", settings.Provider)
	}
	if normalized.APIKey == "" {
		return nil, fmt.Errorf("missing api_key for provider %s: set it explicitly or via the %s environment variable",
			settings.Provider, agent.EnvKeyName(settings.Provider))
	}
	return openaicompat.New(normalized), nil
}
