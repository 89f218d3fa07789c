// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package synth

import (
	"fmt"
	"os"

	"github.com/AleutianAI/doccheck/services/doccheck/config"
)

// Supported backend names.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// Default models per backend.
const (
	DefaultOllamaModel = "llama3.1"
	DefaultOpenAIModel = "gpt-4o"
)

// NewGenerator builds the backend named by cfg.Backend.
//
// Description:
//
//	Explicit config values win, then environment variables
//	(OLLAMA_BASE_URL, OLLAMA_MODEL, OPENAI_MODEL, OPENAI_API_KEY), then
//	built-in defaults. An unsupported backend name is a configuration error
//	and is returned immediately.
//
// Inputs:
//
//	cfg - LLM section of the doccheck config.
//
// Outputs:
//
//	Generator - The backend client.
//	error - ErrUnknownBackend, or a missing OpenAI key.
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	switch cfg.Backend {
	case BackendOllama:
		baseURL := firstNonEmpty(cfg.BaseURL, os.Getenv("OLLAMA_BASE_URL"), DefaultOllamaURL)
		model := firstNonEmpty(cfg.Model, os.Getenv("OLLAMA_MODEL"), DefaultOllamaModel)
		return NewOllamaClient(baseURL, model, cfg.Timeout), nil
	case BackendOpenAI:
		key, err := openAIKey()
		if err != nil {
			return nil, &BackendError{Backend: BackendOpenAI, Err: err}
		}
		model := firstNonEmpty(cfg.Model, os.Getenv("OPENAI_MODEL"), DefaultOpenAIModel)
		return NewOpenAIClient(key, cfg.BaseURL, model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
