// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package synth proposes docstrings and type hints for Python functions
// using a language model.
//
// The model is an opaque text service: a function signature goes in, a
// replacement signature-plus-docstring block comes out. Proposals are
// rendered as unified diffs; source files are never modified.
package synth

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the synth package.
var (
	// ErrUnknownBackend indicates the configured backend name is not supported.
	ErrUnknownBackend = errors.New("unknown LLM backend")

	// ErrEmptyResponse indicates the backend returned no content.
	ErrEmptyResponse = errors.New("empty LLM response")

	// ErrNoCodeBlock indicates the response held no fenced python block.
	ErrNoCodeBlock = errors.New("no python code block in response")

	// ErrInlineBody indicates the function body shares the signature line,
	// so a header replacement cannot be expressed line-wise.
	ErrInlineBody = errors.New("function body on signature line")
)

// GenerationParams tunes a single generation request. Nil fields use the
// backend's defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// Generator is a language model backend.
//
// Generate is one blocking call with no retries; ctx bounds it.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// BackendError wraps a failure from a specific backend.
//
// Thread Safety: Immutable after creation.
type BackendError struct {
	// Backend is the backend name (e.g., "ollama").
	Backend string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BackendError) Unwrap() error {
	return e.Err
}
