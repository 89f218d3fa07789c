// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast parses Python source files with tree-sitter and extracts the
// per-function metadata the docstring checker works on.
//
// The package has two stages:
//   - PythonParser turns a file into a ParsedFile (syntax tree plus source lines)
//   - ExtractFunctions walks a ParsedFile and yields one FunctionRecord per
//     function definition, at any nesting depth
//
// Neither stage keeps state between files.
package ast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

const (
	// DefaultMaxFileSize is the default upper bound on accepted source size.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// WarnFileSize is the size above which a warning is logged before parsing.
	WarnFileSize = 1024 * 1024
)

// receiverNames are the implicit first parameters excluded from documentation
// requirements.
var receiverNames = map[string]bool{
	"self": true,
	"cls":  true,
}

// IsReceiver reports whether name is an implicit receiver parameter name.
func IsReceiver(name string) bool {
	return receiverNames[name]
}

// FunctionRecord describes one function definition found in a source file.
//
// Description:
//
//	A FunctionRecord is built once by ExtractFunctions from a single
//	function_definition node and is read-only afterward. It is discarded when
//	the containing file's check completes.
//
// Invariants:
//   - Parameters never contains a receiver name (self, cls).
//   - StartLine <= EndLine, both 1-indexed.
//   - Docstring is empty when HasDocstring is false.
//
// Thread Safety: Immutable after creation.
type FunctionRecord struct {
	// Name is the function identifier.
	Name string `json:"name" yaml:"name"`

	// Parameters are the positional-or-keyword parameter names in
	// declaration order, with receiver names filtered out.
	Parameters []string `json:"parameters" yaml:"parameters"`

	// HasDocstring is true when the first body statement is a string literal.
	HasDocstring bool `json:"has_docstring" yaml:"has_docstring"`

	// Docstring is the cleaned docstring text (common indentation removed,
	// surrounding blank lines dropped).
	Docstring string `json:"docstring,omitempty" yaml:"docstring,omitempty"`

	// Body is the source text after the signature line and the docstring
	// lines. The slice is computed from the docstring's line count, not from
	// node positions, so it is approximate for multi-line signatures and for
	// docstrings whose quotes sit on their own lines.
	Body string `json:"-" yaml:"-"`

	// StartLine is the 1-indexed line of the def keyword.
	StartLine int `json:"start_line" yaml:"start_line"`

	// EndLine is the 1-indexed last line of the definition.
	EndLine int `json:"end_line" yaml:"end_line"`

	// Signature is "def name(p1, p2):" including receivers, without
	// annotations, defaults or body.
	Signature string `json:"signature" yaml:"signature"`

	// MissingTypeHints is true when any positional parameter (receivers
	// included) lacks an annotation or the return annotation is absent.
	MissingTypeHints bool `json:"missing_type_hints" yaml:"missing_type_hints"`

	// Indent is the leading whitespace of the def line.
	Indent string `json:"-" yaml:"-"`

	// HeaderEndLine is the 1-indexed line holding the colon that ends the
	// signature.
	HeaderEndLine int `json:"-" yaml:"-"`

	// DocEndLine is the 1-indexed last line of the docstring literal, or 0.
	DocEndLine int `json:"-" yaml:"-"`

	// BodyStartLine is the 1-indexed line where the body block begins.
	BodyStartLine int `json:"-" yaml:"-"`
}

// IsInternal reports whether the function name marks it as internal.
func (f FunctionRecord) IsInternal() bool {
	return strings.HasPrefix(f.Name, "_")
}

// ParsedFile is the result of parsing one source file.
//
// Thread Safety: Not safe for concurrent use. Call Close when done to free
// the underlying tree-sitter tree.
type ParsedFile struct {
	// Path is the path the file was read from.
	Path string

	// Lines is the source split on "\n".
	Lines []string

	source []byte
	tree   *sitter.Tree
}

// Root returns the root node of the syntax tree.
func (p *ParsedFile) Root() *sitter.Node {
	return p.tree.RootNode()
}

// Source returns the raw source bytes.
func (p *ParsedFile) Source() []byte {
	return p.source
}

// Close releases the syntax tree. Safe to call more than once.
func (p *ParsedFile) Close() {
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
}
