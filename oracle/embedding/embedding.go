//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package embedding provides an embedding-based similarity judge.
//
// Expected and actual texts are embedded through an OpenAI-compatible
// embeddings API; their cosine similarity is mapped to [0, 1].
package embedding

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/oracle"
)

// Verify that Judge implements the oracle.SimilarityJudge interface.
var _ oracle.SimilarityJudge = (*Judge)(nil)

const (
	// DefaultModel is the default embedding model.
	DefaultModel = "text-embedding-3-small"
	// DefaultMaxRetries is the default maximum number of retries per request.
	DefaultMaxRetries = 2
)

// defaultRetryBackoff is the default backoff durations for retry attempts.
var defaultRetryBackoff = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
}

// Judge scores text similarity by cosine distance of embedding vectors.
type Judge struct {
	client         openai.Client
	model          string
	apiKey         string
	baseURL        string
	requestOptions []option.RequestOption

	maxRetries   int
	retryBackoff []time.Duration
}

// Option represents a functional option for configuring the Judge.
type Option func(*Judge)

// WithModel sets the embedding model to use.
func WithModel(model string) Option {
	return func(j *Judge) {
		j.model = model
	}
}

// WithAPIKey sets the API key.
// If not provided, will use OPENAI_API_KEY environment variable.
func WithAPIKey(apiKey string) Option {
	return func(j *Judge) {
		j.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL for the embeddings API.
// Optional, for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(j *Judge) {
		j.baseURL = baseURL
	}
}

// WithRequestOptions sets additional options for client requests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(j *Judge) {
		j.requestOptions = append(j.requestOptions, opts...)
	}
}

// WithMaxRetries sets the maximum number of retries for errors.
// Negative values are treated as 0.
func WithMaxRetries(maxRetries int) Option {
	return func(j *Judge) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		j.maxRetries = maxRetries
	}
}

// WithRetryBackoff sets the backoff durations for each retry attempt.
// If the number of retries exceeds the length of backoff slice,
// the last backoff duration will be used for remaining retries.
func WithRetryBackoff(backoff []time.Duration) Option {
	return func(j *Judge) {
		j.retryBackoff = backoff
	}
}

// New creates a new embedding judge with the given options.
func New(opts ...Option) *Judge {
	j := &Judge{
		model:        DefaultModel,
		maxRetries:   DefaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(j)
	}

	var clientOpts []option.RequestOption
	if j.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(j.apiKey))
	}
	if j.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(j.baseURL))
	}
	// Retries are handled here, not by the SDK.
	clientOpts = append(clientOpts, option.WithMaxRetries(0))
	j.client = openai.NewClient(clientOpts...)

	return j
}

// Similarity implements the oracle.SimilarityJudge interface. It embeds both
// texts and returns their cosine similarity clamped to [0, 1].
func (j *Judge) Similarity(ctx context.Context, expected, actual string) (float64, error) {
	expectedVec, err := j.embedWithRetry(ctx, expected)
	if err != nil {
		return 0, fmt.Errorf("failed to embed expected text: %w", err)
	}
	actualVec, err := j.embedWithRetry(ctx, actual)
	if err != nil {
		return 0, fmt.Errorf("failed to embed actual text: %w", err)
	}
	return cosineSimilarity(expectedVec, actualVec), nil
}

// embedWithRetry wraps embed with retry logic for errors.
func (j *Judge) embedWithRetry(ctx context.Context, text string) ([]float64, error) {
	var lastErr error
	for attempt := 0; attempt <= j.maxRetries; attempt++ {
		vec, err := j.embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if attempt >= j.maxRetries {
			break
		}
		backoff := j.backoffDuration(attempt)
		log.Infof("embedding request failed, retrying in %v (attempt %d/%d): %v", backoff, attempt+1, j.maxRetries, err)
		if backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return nil, lastErr
}

// backoffDuration returns the backoff duration for the given attempt.
// If attempt index exceeds the backoff slice length, returns the last one.
func (j *Judge) backoffDuration(attempt int) time.Duration {
	if len(j.retryBackoff) == 0 {
		return 0
	}
	if attempt < len(j.retryBackoff) {
		return j.retryBackoff[attempt]
	}
	return j.retryBackoff[len(j.retryBackoff)-1]
}

func (j *Judge) embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	request := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: j.model,
	}
	requestOpts := make([]option.RequestOption, len(j.requestOptions))
	copy(requestOpts, j.requestOptions)
	response, err := j.client.Embeddings.New(ctx, request, requestOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding response")
	}
	return response.Data[0].Embedding, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, clamped
// to [0, 1]. Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}
