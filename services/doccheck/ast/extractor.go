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
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// ExtractFunctions returns one FunctionRecord per function definition in pf.
//
// Description:
//
//	Walks the whole syntax tree breadth-first, so module-level functions
//	come before methods and nested functions. Every plain def, decorated or
//	not, at any depth, is yielded exactly once. Coroutines (async def) are
//	not yielded, but plain defs nested inside them are. The order is
//	deterministic for a given source.
//
// Inputs:
//   - ctx: Context used for metric recording.
//   - pf: A parsed file. Must not be closed.
//
// Outputs:
//   - []FunctionRecord: Extracted records, empty if the file has no functions.
//
// Example:
//
//	pf, err := parser.ParseFile(ctx, path)
//	if err != nil {
//	    return err
//	}
//	defer pf.Close()
//	for _, fn := range ast.ExtractFunctions(ctx, pf) {
//	    fmt.Println(fn.Name, fn.Parameters)
//	}
func ExtractFunctions(ctx context.Context, pf *ParsedFile) []FunctionRecord {
	records := make([]FunctionRecord, 0)

	queue := []*sitter.Node{pf.Root()}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.Type() == "function_definition" && !isAsync(node) {
			if rec, ok := buildRecord(node, pf); ok {
				records = append(records, rec)
			}
		}

		for i := 0; i < int(node.NamedChildCount()); i++ {
			queue = append(queue, node.NamedChild(i))
		}
	}

	recordExtractMetrics(ctx, len(records))
	return records
}

// buildRecord converts one function_definition node into a FunctionRecord.
func buildRecord(node *sitter.Node, pf *ParsedFile) (FunctionRecord, bool) {
	src := pf.Source()

	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return FunctionRecord{}, false
	}

	rec := FunctionRecord{
		Name:          nameNode.Content(src),
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       codeEndLine(node),
		HeaderEndLine: headerEndLine(node),
	}
	if rec.StartLine-1 < len(pf.Lines) {
		line := pf.Lines[rec.StartLine-1]
		rec.Indent = line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
	}

	var positional []string
	annotated := true
	if paramList := node.ChildByFieldName("parameters"); paramList != nil {
		for _, p := range collectParameters(paramList, src) {
			positional = append(positional, p.name)
			if !p.annotated {
				annotated = false
			}
			if !IsReceiver(p.name) {
				rec.Parameters = append(rec.Parameters, p.name)
			}
		}
	}
	if rec.Parameters == nil {
		rec.Parameters = []string{}
	}
	rec.Signature = "def " + rec.Name + "(" + strings.Join(positional, ", ") + "):"
	rec.MissingTypeHints = !annotated || node.ChildByFieldName("return_type") == nil

	if body := node.ChildByFieldName("body"); body != nil {
		rec.BodyStartLine = int(body.StartPoint().Row) + 1
		if doc, end, ok := docstringOf(body, src); ok {
			rec.HasDocstring = true
			rec.Docstring = doc
			rec.DocEndLine = end
		}
	}

	rec.Body = sliceBody(pf.Lines, rec)
	return rec, true
}

// sliceBody returns the lines after the signature and the docstring.
//
// The docstring is skipped by counting the lines of its cleaned text, so the
// result drifts when the literal's quotes sit on their own lines or the
// signature spans several lines. Callers rely on this exact slice, so it is
// kept as a line-count heuristic rather than derived from node positions.
func sliceBody(lines []string, rec FunctionRecord) string {
	docLines := 0
	if rec.HasDocstring {
		docLines = strings.Count(rec.Docstring, "\n") + 1
	}

	from := rec.StartLine + docLines + 1
	to := rec.EndLine
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return ""
	}
	return strings.Join(lines[from:to], "\n")
}

// docstringOf returns the cleaned docstring of a function body block and
// the 1-indexed line the literal ends on.
func docstringOf(block *sitter.Node, src []byte) (string, int, bool) {
	first := firstStatement(block)
	if first == nil || first.Type() != "expression_statement" || first.NamedChildCount() != 1 {
		return "", 0, false
	}

	lit := unwrapParens(first.NamedChild(0))
	if lit == nil {
		return "", 0, false
	}
	var value string
	switch lit.Type() {
	case "string":
		v, ok := decodeStringLiteral(lit.Content(src))
		if !ok {
			return "", 0, false
		}
		value = v
	case "concatenated_string":
		var b strings.Builder
		for i := 0; i < int(lit.NamedChildCount()); i++ {
			part := lit.NamedChild(i)
			if part.Type() == "comment" {
				continue
			}
			if part.Type() != "string" {
				return "", 0, false
			}
			v, ok := decodeStringLiteral(part.Content(src))
			if !ok {
				return "", 0, false
			}
			b.WriteString(v)
		}
		value = b.String()
	default:
		return "", 0, false
	}

	return cleanDocstring(value), lastLine(first), true
}

// unwrapParens strips redundant parentheses around an expression. Empty
// parentheses yield nil.
func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" {
		node = firstStatement(node)
	}
	return node
}

// firstStatement returns the first non-comment named child of a block.
func firstStatement(block *sitter.Node) *sitter.Node {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		if child.Type() != "comment" {
			return child
		}
	}
	return nil
}

type parameter struct {
	name      string
	annotated bool
}

// collectParameters returns the positional-or-keyword parameters of a
// parameter list. Positional-only parameters (before "/"), keyword-only
// parameters (after "*" or "*args") and the *args/**kwargs splats are not
// included.
func collectParameters(params *sitter.Node, src []byte) []parameter {
	var out []parameter
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier":
			out = append(out, parameter{name: child.Content(src)})
		case "typed_parameter":
			inner := child.NamedChild(0)
			if inner == nil || inner.Type() != "identifier" {
				return out
			}
			out = append(out, parameter{name: inner.Content(src), annotated: true})
		case "default_parameter":
			if name := child.ChildByFieldName("name"); name != nil {
				out = append(out, parameter{name: name.Content(src)})
			}
		case "typed_default_parameter":
			if name := child.ChildByFieldName("name"); name != nil {
				out = append(out, parameter{name: name.Content(src), annotated: true})
			}
		case "positional_separator", "/":
			out = nil
		case "keyword_separator", "*", "list_splat_pattern", "dictionary_splat_pattern":
			return out
		}
	}
	return out
}

// isAsync reports whether a function_definition is a coroutine.
func isAsync(node *sitter.Node) bool {
	return node.ChildCount() > 0 && node.Child(0).Type() == "async"
}

// headerEndLine returns the line of the colon closing the signature.
func headerEndLine(node *sitter.Node) int {
	line := int(node.StartPoint().Row) + 1
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == ":" {
			line = int(child.StartPoint().Row) + 1
		}
		if child.Type() == "block" {
			break
		}
	}
	return line
}

// lastLine returns the 1-indexed last line a node covers. A node ending at
// column 0 only owns the newline of the previous line.
func lastLine(node *sitter.Node) int {
	end := node.EndPoint()
	if end.Column == 0 && end.Row > node.StartPoint().Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}

// codeEndLine returns the 1-indexed line of the last non-comment token
// under node. Trailing comments that the grammar attaches to a block,
// at any nesting depth, do not extend the span.
func codeEndLine(node *sitter.Node) int {
	for {
		var last *sitter.Node
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			child := node.Child(i)
			if child.Type() != "comment" && child.EndByte() > child.StartByte() {
				last = child
				break
			}
		}
		if last == nil {
			return lastLine(node)
		}
		if last.ChildCount() == 0 {
			return lastLine(last)
		}
		node = last
	}
}
