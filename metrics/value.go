//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

package metrics

import "math"

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// percent converts a 0-1 ratio to a percentage rounded to two decimals.
// Nil passes through.
func percent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	p := roundTo(*v*100, 2)
	return &p
}

// rounded returns a pointer to v rounded to the given decimals, or nil when
// v is nil.
func rounded(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	r := roundTo(*v, decimals)
	return &r
}

// mean returns the arithmetic mean of values, or nil for an empty slice.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

func ptr(v float64) *float64 {
	return &v
}

// metaBool reads a truthy metadata flag. JSON booleans are the expected
// representation; non-zero numbers are accepted for tolerance.
func metaBool(metadata map[string]any, key string) bool {
	if metadata == nil {
		return false
	}
	switch v := metadata[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}

// metaHas reports whether the key is present at all, regardless of value.
func metaHas(metadata map[string]any, key string) bool {
	if metadata == nil {
		return false
	}
	_, ok := metadata[key]
	return ok
}

// metaFloat reads a numeric metadata value. JSON numbers decode as float64;
// int variants are accepted for values set programmatically.
func metaFloat(metadata map[string]any, key string) (float64, bool) {
	if metadata == nil {
		return 0, false
	}
	switch v := metadata[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// metaString reads a string metadata value.
func metaString(metadata map[string]any, key string) (string, bool) {
	if metadata == nil {
		return "", false
	}
	v, ok := metadata[key].(string)
	return v, ok
}
