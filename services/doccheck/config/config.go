// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the doccheck YAML configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".doccheck.yaml"

// ErrInvalidConfig indicates the configuration failed validation.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Config is the full doccheck configuration.
type Config struct {
	// CheckInternal includes functions prefixed with "_" in checks.
	CheckInternal bool `yaml:"check_internal"`

	// Extensions are the file suffixes treated as Python source.
	Extensions []string `yaml:"extensions" validate:"required,min=1,dive,startswith=."`

	// MaxFileSize is the largest file, in bytes, the parser accepts.
	MaxFileSize int64 `yaml:"max_file_size" validate:"gt=0"`

	// Jobs is the number of files checked concurrently.
	Jobs int `yaml:"jobs" validate:"gte=1,lte=64"`

	// LLM configures docstring synthesis.
	LLM LLMConfig `yaml:"llm"`
}

// LLMConfig selects and tunes the model backend used by the suggest command.
type LLMConfig struct {
	// Backend is "ollama" or "openai". Other names are rejected when the
	// backend is constructed.
	Backend string `yaml:"backend" validate:"required"`

	// Model overrides the backend's default model (llama3.1 for ollama,
	// gpt-4o for openai).
	Model string `yaml:"model,omitempty"`

	// BaseURL overrides the backend endpoint.
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`

	// Temperature is the sampling temperature.
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`

	// Timeout bounds a single generation request.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		CheckInternal: true,
		Extensions:    []string{".py"},
		MaxFileSize:   10 * 1024 * 1024,
		Jobs:          1,
		LLM: LLMConfig{
			Backend:     "ollama",
			Temperature: 0.2,
			Timeout:     5 * time.Minute,
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
