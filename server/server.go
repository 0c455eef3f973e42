//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the evaluation service over HTTP.
//
// Routes:
//
//	POST /api/evaluation            start a run, returns the task ID
//	GET  /api/evaluation/{taskID}   poll the run snapshot
//	POST /api/cancel/{taskID}       request cancellation
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-agent-eval/agent"
	"trpc.group/trpc-go/trpc-agent-eval/evalcase"
	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/metrics"
	"trpc.group/trpc-go/trpc-agent-eval/service"
	"trpc.group/trpc-go/trpc-agent-eval/task"
)

// DefaultAddr is the default listen address.
const DefaultAddr = ":8000"

// StartPayload is the wire form of an evaluation start request. Timeouts
// are plain seconds on the wire.
type StartPayload struct {
	Provider       string            `json:"provider"`
	APIKey         string            `json:"api_key,omitempty"`
	Model          string            `json:"model,omitempty"`
	BaseURL        string            `json:"base_url,omitempty"`
	Temperature    float64           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	TimeoutSeconds int               `json:"timeout,omitempty"`
	MaxRetries     int               `json:"max_retries,omitempty"`
	ExtraHeaders   map[string]string `json:"extra_headers,omitempty"`
	ExtraBody      map[string]any    `json:"extra_body,omitempty"`

	EvaluationTypes []evalcase.Kind  `json:"evaluation_types,omitempty"`
	CustomTestCases []*evalcase.Case `json:"custom_test_cases,omitempty"`
	MetricsEnabled  *bool            `json:"metrics_enabled,omitempty"`
	FeatureConfig   *metrics.Config  `json:"feature_config,omitempty"`
	Weights         *metrics.Weights `json:"weights,omitempty"`
}

// startResponse acknowledges a started run.
type startResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the evaluation HTTP API.
type Server struct {
	svc    *service.Service
	addr   string
	router *mux.Router
	http   *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// New creates a server around the given service.
func New(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		svc:  svc,
		addr: DefaultAddr,
	}
	for _, opt := range opts {
		opt(s)
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/evaluation", s.handleStart).Methods(http.MethodPost)
	router.HandleFunc("/api/evaluation/{taskID}", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/cancel/{taskID}", s.handleCancel).Methods(http.MethodPost)
	s.router = router
	return s
}

// Handler returns the HTTP handler with CORS applied, for mounting or tests.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.router)
}

// Serve starts listening. Blocks until the listener fails or Shutdown is
// called.
func (s *Server) Serve() error {
	s.http = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("evaluation server listening on %s", s.addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the listener. Runs keep executing; their state
// stays pollable until the process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload StartPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	req := &service.StartRequest{
		Agent: agent.Settings{
			Provider:     payload.Provider,
			APIKey:       payload.APIKey,
			Model:        payload.Model,
			BaseURL:      payload.BaseURL,
			Temperature:  payload.Temperature,
			MaxTokens:    payload.MaxTokens,
			Timeout:      time.Duration(payload.TimeoutSeconds) * time.Second,
			MaxRetries:   payload.MaxRetries,
			ExtraHeaders: payload.ExtraHeaders,
			ExtraBody:    payload.ExtraBody,
		},
		Kinds:          payload.EvaluationTypes,
		Cases:          payload.CustomTestCases,
		MetricsEnabled: payload.MetricsEnabled,
		Metrics:        payload.FeatureConfig,
		Weights:        payload.Weights,
	}

	id, err := s.svc.Start(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, startResponse{TaskID: id, Status: "started"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["taskID"]
	snapshot, err := s.svc.Status(id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "task not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["taskID"]
	outcome, err := s.svc.Cancel(id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "task not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}
