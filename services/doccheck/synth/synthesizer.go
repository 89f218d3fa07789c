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
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/AleutianAI/doccheck/services/doccheck/ast"
)

// Proposal is a suggested replacement for one function header.
type Proposal struct {
	// Function is the function name.
	Function string `json:"function" yaml:"function"`

	// Line is the 1-indexed def line.
	Line int `json:"line" yaml:"line"`

	// Block is the proposed signature and docstring, unindented.
	Block string `json:"block" yaml:"block"`

	// Diff is Block rendered as a unified diff against the file.
	Diff string `json:"diff" yaml:"diff"`
}

// Candidates returns the functions that lack a docstring or any type hint.
func Candidates(records []ast.FunctionRecord) []ast.FunctionRecord {
	var out []ast.FunctionRecord
	for _, fn := range records {
		if !fn.HasDocstring || fn.MissingTypeHints {
			out = append(out, fn)
		}
	}
	return out
}

// Synthesizer drives the prompt chain: signature in, replacement block out.
//
// Thread Safety: Safe for concurrent use if the Generator is.
type Synthesizer struct {
	gen    Generator
	params GenerationParams
	parser *ast.PythonParser
	logger *slog.Logger
}

// NewSynthesizer creates a Synthesizer using gen for generation.
func NewSynthesizer(gen Generator, params GenerationParams, parser *ast.PythonParser, logger *slog.Logger) *Synthesizer {
	if parser == nil {
		parser = ast.NewPythonParser()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{gen: gen, params: params, parser: parser, logger: logger}
}

// Propose asks the model for a documented, type-hinted version of the
// signature.
//
// Inputs:
//
//	ctx - Bounds the single backend call.
//	signature - A "def name(args):" line without body.
//
// Outputs:
//
//	string - The replacement block from the model's python code fence.
//	error - Backend failure, or ErrNoCodeBlock.
func (s *Synthesizer) Propose(ctx context.Context, signature string) (string, error) {
	prompt, err := FormatPrompt(signature)
	if err != nil {
		return "", err
	}
	response, err := s.gen.Generate(ctx, prompt, s.params)
	if err != nil {
		return "", err
	}
	return ExtractCodeBlock(response)
}

// SuggestFile proposes headers for every candidate function in path.
//
// Description:
//
//	Functions are processed bottom-up so line numbers in earlier diffs stay
//	valid if the proposals are applied in order. A failure for one function
//	is logged and skipped; only parse failures and cancellation are returned.
//	The file is never written.
//
// Outputs:
//
//	[]Proposal - One per function the model answered for.
//	error - Parse failure or context cancellation.
func (s *Synthesizer) SuggestFile(ctx context.Context, path string) ([]Proposal, error) {
	pf, err := s.parser.ParseFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("suggesting for %s: %w", path, err)
	}
	defer pf.Close()

	candidates := Candidates(ast.ExtractFunctions(ctx, pf))
	slices.SortStableFunc(candidates, func(a, b ast.FunctionRecord) int {
		return cmp.Compare(b.StartLine, a.StartLine)
	})

	var proposals []Proposal
	for _, fn := range candidates {
		if err := ctx.Err(); err != nil {
			return proposals, err
		}

		s.logger.Info("Requesting docstring",
			slog.String("function", fn.Name),
			slog.Int("line", fn.StartLine),
			slog.String("file", path))

		block, err := s.Propose(ctx, fn.Signature)
		if err != nil {
			s.logger.Warn("No proposal",
				slog.String("function", fn.Name),
				slog.Int("line", fn.StartLine),
				slog.String("file", path),
				slog.String("error", err.Error()))
			continue
		}

		d, err := RenderDiff(path, pf.Lines, fn, block)
		if err != nil {
			s.logger.Warn("Cannot render proposal",
				slog.String("function", fn.Name),
				slog.Int("line", fn.StartLine),
				slog.String("file", path),
				slog.String("error", err.Error()))
			continue
		}

		proposals = append(proposals, Proposal{
			Function: fn.Name,
			Line:     fn.StartLine,
			Block:    block,
			Diff:     d,
		})
	}
	return proposals, nil
}
