// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/doccheck/services/doccheck/ast"
)

// Options controls which functions a Checker inspects.
type Options struct {
	// CheckInternal includes functions whose name starts with "_".
	CheckInternal bool
}

// DefaultOptions returns the default checker options: every function is
// checked, internal ones included.
func DefaultOptions() Options {
	return Options{CheckInternal: true}
}

// CheckerOption configures a Checker instance.
type CheckerOption func(*Checker)

// WithLogger sets the logger findings are written to.
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithParser sets the parser used to read source files.
func WithParser(parser *ast.PythonParser) CheckerOption {
	return func(c *Checker) {
		if parser != nil {
			c.parser = parser
		}
	}
}

// Checker validates the docstrings of every function in a file.
//
// Description:
//
//	For each function the checker runs, in order: the missing-docstring
//	check, the argument check, and the section check. A violation is logged
//	as one warning line and recorded as a Finding; it fails the file but
//	never stops the remaining functions from being checked.
//
// Thread Safety:
//
//	Checker is safe for concurrent use. It holds no per-file state.
type Checker struct {
	opts   Options
	parser *ast.PythonParser
	logger *slog.Logger
}

// NewChecker creates a Checker.
//
// Inputs:
//   - opts: Which functions to check.
//   - options: Optional WithLogger / WithParser overrides.
//
// Outputs:
//   - *Checker: Never nil. Defaults to slog.Default() and a default parser.
func NewChecker(opts Options, options ...CheckerOption) *Checker {
	c := &Checker{
		opts:   opts,
		parser: ast.NewPythonParser(),
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Options returns the options the checker was built with.
func (c *Checker) Options() Options {
	return c.opts
}

// CheckFile checks every function in the Python file at path.
//
// Description:
//
//	Parses the file, extracts its functions and checks each qualifying one.
//	File-access failures (missing, undecodable, unparsable) are logged at
//	error level and returned; the caller decides whether to skip the file.
//
// Inputs:
//   - ctx: Context for cancellation and tracing.
//   - path: Path to a Python source file.
//
// Outputs:
//   - FileResult: Verdict and findings. Zero value when err is non-nil.
//   - error: Non-nil if the file could not be parsed. Wraps an ast sentinel.
//
// Example:
//
//	res, err := checker.CheckFile(ctx, "pkg/module.py")
//	if err != nil {
//	    // already logged; file skipped
//	}
//	fmt.Println(res.Passed)
func (c *Checker) CheckFile(ctx context.Context, path string) (FileResult, error) {
	c.logger.Info("Checking docstrings in file", slog.String("file", path))

	pf, err := c.parser.ParseFile(ctx, path)
	if err != nil {
		c.logger.Error("Failed to load file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return FileResult{}, fmt.Errorf("checking %s: %w", path, err)
	}
	defer pf.Close()

	res := FileResult{Path: path, Passed: true}
	for _, fn := range ast.ExtractFunctions(ctx, pf) {
		if !c.opts.CheckInternal && fn.IsInternal() {
			c.logger.Debug("Skipping internal function",
				slog.String("function", fn.Name),
				slog.String("file", path))
			continue
		}
		res.Functions++

		findings := c.CheckFunction(fn, path)
		if len(findings) > 0 {
			res.Passed = false
			res.Findings = append(res.Findings, findings...)
		}
	}
	return res, nil
}

// CheckFunction checks a single function and returns its findings.
//
// Description:
//
//	A function without a docstring yields one FindingMissingDocstring and
//	nothing else. Otherwise every undocumented argument is reported, then
//	the first missing required section, if any.
//
// Inputs:
//   - fn: The function to check.
//   - path: File path used in log lines.
//
// Outputs:
//   - []Finding: Empty when the function passes.
func (c *Checker) CheckFunction(fn ast.FunctionRecord, path string) []Finding {
	if !fn.HasDocstring {
		c.logger.Warn("Docstring missing",
			slog.String("function", fn.Name),
			slog.Int("line", fn.StartLine),
			slog.String("file", path))
		return []Finding{{
			Kind:     FindingMissingDocstring,
			Function: fn.Name,
			Line:     fn.StartLine,
		}}
	}

	var findings []Finding
	for _, arg := range UndocumentedArguments(fn) {
		c.logger.Warn("Undocumented argument",
			slog.String("argument", arg),
			slog.String("function", fn.Name),
			slog.Int("line", fn.StartLine),
			slog.String("file", path))
		findings = append(findings, Finding{
			Kind:     FindingUndocumentedArgument,
			Function: fn.Name,
			Line:     fn.StartLine,
			Argument: arg,
		})
	}

	if section, ok := FirstMissingSection(fn, RequiredSections(fn)); !ok {
		c.logger.Warn("Missing section",
			slog.String("section", string(section)),
			slog.String("function", fn.Name),
			slog.Int("line", fn.StartLine),
			slog.String("file", path))
		findings = append(findings, Finding{
			Kind:     FindingMissingSection,
			Function: fn.Name,
			Line:     fn.StartLine,
			Section:  section,
		})
	}
	return findings
}
