// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package check validates Python docstrings for completeness.
//
// For every function in a file it infers which docstring sections the body
// requires (Args, Returns, Yields, Raises), checks that each is present as a
// header line, and checks that every parameter name is mentioned. Violations
// are logged and collected as findings; they never abort a scan.
package check

import (
	"errors"
	"time"
)

// Sentinel errors for the check package.
var (
	// ErrPathNotFound indicates the scan root does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrInvalidInput indicates invalid input to a check function.
	ErrInvalidInput = errors.New("invalid input")
)

// FindingKind classifies a documentation violation.
type FindingKind string

const (
	// FindingMissingDocstring means the function has no docstring.
	FindingMissingDocstring FindingKind = "missing_docstring"

	// FindingMissingSection means a required section header is absent.
	FindingMissingSection FindingKind = "missing_section"

	// FindingUndocumentedArgument means a parameter name is not mentioned.
	FindingUndocumentedArgument FindingKind = "undocumented_argument"
)

// Finding is one documentation violation.
//
// Thread Safety: Immutable after creation.
type Finding struct {
	Kind     FindingKind `json:"kind" yaml:"kind"`
	Function string      `json:"function" yaml:"function"`
	Line     int         `json:"line" yaml:"line"`
	Section  Section     `json:"section,omitempty" yaml:"section,omitempty"`
	Argument string      `json:"argument,omitempty" yaml:"argument,omitempty"`
}

// FileResult is the verdict for one source file.
type FileResult struct {
	// Path is the checked file.
	Path string `json:"path" yaml:"path"`

	// Passed is true iff every checked function passed. A skipped file
	// never passes.
	Passed bool `json:"passed" yaml:"passed"`

	// Skipped is true when the file could not be read or parsed.
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Error describes why the file was skipped.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Functions is the number of functions checked, internal skips excluded.
	Functions int `json:"functions" yaml:"functions"`

	// Findings lists every violation in discovery order.
	Findings []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// Report is the outcome of one scan.
type Report struct {
	// RunID identifies the scan in logs and rendered output.
	RunID string `json:"run_id" yaml:"run_id"`

	// Root is the path the scan started from.
	Root string `json:"root" yaml:"root"`

	// StartedAtMilli is the scan start time in Unix milliseconds.
	StartedAtMilli int64 `json:"started_at_milli" yaml:"started_at_milli"`

	// Duration is how long the scan took.
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns"`

	// Files holds per-file verdicts sorted by path.
	Files []FileResult `json:"files" yaml:"files"`

	// Passed is true iff every file passed.
	Passed bool `json:"passed" yaml:"passed"`
}

// FindingCount returns the total number of findings across all files.
func (r *Report) FindingCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Findings)
	}
	return n
}

// FailedFiles returns the results that did not pass.
func (r *Report) FailedFiles() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if !f.Passed {
			failed = append(failed, f)
		}
	}
	return failed
}
