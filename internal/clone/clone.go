//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package clone provides functions to clone.
package clone

import (
	"encoding/json"
	"fmt"
)

// Clone performs a deep copy on src via a JSON round trip. JSON is used
// instead of gob because the cloned types carry optional pointer fields and
// free-form metadata maps, neither of which gob can encode.
func Clone[T any](src *T) (*T, error) {
	if src == nil {
		return nil, fmt.Errorf("nil input")
	}
	data, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var dst T
	if err := json.Unmarshal(data, &dst); err != nil {
		return nil, err
	}
	return &dst, nil
}

// Slice deep copies a slice of pointers element by element.
func Slice[T any](src []*T) ([]*T, error) {
	if src == nil {
		return nil, nil
	}
	dst := make([]*T, 0, len(src))
	for _, item := range src {
		if item == nil {
			dst = append(dst, nil)
			continue
		}
		copied, err := Clone(item)
		if err != nil {
			return nil, err
		}
		dst = append(dst, copied)
	}
	return dst, nil
}
