//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package status provides the lifecycle status of an evaluation run.
package status

import "encoding/json"

// TaskStatus represents the lifecycle status of an evaluation run.
type TaskStatus int

const (
	// TaskStatusUnknown represents an unknown run status.
	TaskStatusUnknown TaskStatus = iota
	// TaskStatusRunning represents a run that is still processing cases.
	TaskStatusRunning
	// TaskStatusCompleted represents a run that processed all cases.
	TaskStatusCompleted
	// TaskStatusCancelled represents a run stopped by a cancel request.
	TaskStatusCancelled
	// TaskStatusFailed represents a run aborted by an unexpected error.
	TaskStatusFailed
)

// String returns the string representation of the run status.
func (s TaskStatus) String() string {
	switch s {
	case TaskStatusRunning:
		return "running"
	case TaskStatusCompleted:
		return "completed"
	case TaskStatusCancelled:
		return "cancelled"
	case TaskStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is final. Once a run reaches a
// terminal status its result log and summary never change.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled || s == TaskStatusFailed
}

// MarshalJSON marshals the status as its string form.
func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses the string form. Unrecognized values decode as
// TaskStatusUnknown rather than failing.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	switch text {
	case "running":
		*s = TaskStatusRunning
	case "completed":
		*s = TaskStatusCompleted
	case "cancelled":
		*s = TaskStatusCancelled
	case "failed":
		*s = TaskStatusFailed
	default:
		*s = TaskStatusUnknown
	}
	return nil
}
