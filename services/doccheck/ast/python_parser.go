// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.opentelemetry.io/otel/codes"
)

// PythonParserOption configures a PythonParser instance.
type PythonParserOption func(*PythonParser)

// WithPythonMaxFileSize sets the maximum file size the parser will accept.
//
// Parameters:
//   - bytes: Maximum file size in bytes. Non-positive values are ignored.
//
// Example:
//
//	parser := NewPythonParser(WithPythonMaxFileSize(5 * 1024 * 1024)) // 5MB limit
func WithPythonMaxFileSize(bytes int64) PythonParserOption {
	return func(p *PythonParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// PythonParser turns Python source into a tree-sitter syntax tree.
//
// Description:
//
//	PythonParser reads a file, validates it, and parses it with the
//	tree-sitter Python grammar. Each call creates its own tree-sitter parser
//	so a single PythonParser may be shared.
//
// Thread Safety:
//
//	PythonParser instances are safe for concurrent use.
type PythonParser struct {
	maxFileSize int64
}

// NewPythonParser creates a new PythonParser with the given options.
//
// Inputs:
//   - opts: Optional configuration functions (WithPythonMaxFileSize)
//
// Outputs:
//   - *PythonParser: Configured parser instance, never nil
func NewPythonParser(opts ...PythonParserOption) *PythonParser {
	p := &PythonParser{
		maxFileSize: DefaultMaxFileSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ParseFile reads and parses the Python file at path.
//
// Description:
//
//	The file is opened, fully read and closed within this call. Failures are
//	classified so a directory scan can skip the file and keep going.
//
// Inputs:
//   - ctx: Context for cancellation and tracing.
//   - path: Path to the file.
//
// Outputs:
//   - *ParsedFile: Parsed tree and source lines. Caller must call Close.
//   - error: Non-nil on failure, wrapping one of:
//   - ErrFileNotFound: the file does not exist
//   - ErrInvalidContent: the file is not valid UTF-8, or is unreadable
//   - ErrSyntax: the source has syntax errors
//   - ErrFileTooLarge: the file exceeds the size limit
//
// Example:
//
//	pf, err := parser.ParseFile(ctx, "pkg/module.py")
//	if err != nil {
//	    return err
//	}
//	defer pf.Close()
func (p *PythonParser) ParseFile(ctx context.Context, path string) (*ParsedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidContent, path, err)
	}
	return p.Parse(ctx, content, path)
}

// Parse parses Python source held in memory.
//
// Description:
//
//	Unlike the symbol parsers tree-sitter is usually paired with, Parse is
//	strict: a tree containing ERROR or MISSING nodes is rejected with
//	ErrSyntax, because a partially parsed function would produce misleading
//	findings.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before and after parsing.
//   - content: Raw source bytes.
//   - path: File path used in errors, logs and spans.
//
// Outputs:
//   - *ParsedFile: Never nil on success. Caller must call Close.
//   - error: See ParseFile.
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (p *PythonParser) Parse(ctx context.Context, content []byte, path string) (_ *ParsedFile, err error) {
	ctx, span := startParseSpan(ctx, p.Language(), path, len(content))
	defer span.End()

	start := time.Now()
	lineCount := 0
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		setParseSpanResult(span, lineCount)
		recordParseMetrics(ctx, p.Language(), time.Since(start), err == nil)
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s size %d exceeds limit %d", ErrFileTooLarge, path, len(content), p.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", path),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, path)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("%w: %s failed to compile", ErrSyntax, path)
	}

	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	lines := strings.Split(string(content), "\n")
	lineCount = len(lines)

	return &ParsedFile{
		Path:   path,
		Lines:  lines,
		source: content,
		tree:   tree,
	}, nil
}

// Language returns the canonical language name for this parser.
func (p *PythonParser) Language() string {
	return "python"
}

// Extensions returns the file extensions this parser handles.
func (p *PythonParser) Extensions() []string {
	return []string{".py"}
}
