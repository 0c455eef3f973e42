//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

package task

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a run ID is unknown to the registry.
var ErrNotFound = errors.New("task not found")

// CancelOutcome describes the effect of a cancel request.
type CancelOutcome struct {
	// Requested is true when the cancel request was delivered to a live run.
	Requested bool `json:"requested"`
	// Message is a human-readable description of the outcome.
	Message string `json:"message"`
}

// Registry maps run IDs to their live state. Entries are kept after the run
// finishes so results stay pollable.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*State
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*State)}
}

// Add registers the state under its run ID.
func (r *Registry) Add(state *State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[state.ID()] = state
}

// Get returns the state for the given run ID.
func (r *Registry) Get(id string) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return state, nil
}

// Cancel requests cancellation of the given run. Cancelling a run that is
// already terminal is a no-op, reported in the outcome message rather than
// as an error.
func (r *Registry) Cancel(id string) (*CancelOutcome, error) {
	state, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if state.Status().Terminal() {
		return &CancelOutcome{Requested: false, Message: "task already finished, nothing to cancel"}, nil
	}
	state.RequestCancel()
	state.MarkCancelled("evaluation cancelled")
	return &CancelOutcome{Requested: true, Message: "cancelled"}, nil
}

// Remove deletes the state for the given run ID.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
}
