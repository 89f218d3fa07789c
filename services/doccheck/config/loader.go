// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration at path.
//
// Description:
//
//	Values in the file are layered over DefaultConfig, so a file only needs
//	the keys it changes. When required is false a missing file is not an
//	error and the defaults are returned.
//
// Inputs:
//
//	path - Config file path.
//	required - Whether a missing file is an error (true for --config).
//
// Outputs:
//
//	Config - The validated configuration.
//	error - Read, parse or validation failure.
func Load(path string, required bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			slog.Debug("No config file, using defaults", slog.String("path", path))
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	slog.Debug("Configuration loaded", slog.String("path", path))
	return cfg, nil
}

// WriteDefault writes DefaultConfig to path, creating parent directories.
// An existing file is left untouched and reported as fs.ErrExist.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, fs.ErrExist)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
