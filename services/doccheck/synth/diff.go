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
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/doccheck/services/doccheck/ast"
)

// headerRange returns the 1-indexed inclusive line range a proposal
// replaces: the signature and, if present, the existing docstring.
func headerRange(fn ast.FunctionRecord) (int, int, error) {
	if fn.BodyStartLine != 0 && fn.BodyStartLine <= fn.HeaderEndLine {
		return 0, 0, ErrInlineBody
	}
	end := fn.HeaderEndLine
	if fn.DocEndLine > end {
		end = fn.DocEndLine
	}
	return fn.StartLine, end, nil
}

// diffPath returns path in the slash-separated, root-relative form used
// after the a/ and b/ prefixes of a diff header.
func diffPath(path string) string {
	p := strings.TrimPrefix(path, filepath.VolumeName(path))
	return strings.TrimLeft(filepath.ToSlash(p), "/")
}

// indentBlock prefixes every non-empty line of block with indent.
func indentBlock(block, indent string) []string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return lines
}

// RenderDiff renders replacing fn's header with block as a unified diff.
//
// Description:
//
//	The replaced range covers the signature lines and the existing
//	docstring, if any; the body is untouched. The block is re-indented to
//	the def line's indentation.
//
// Inputs:
//
//	path - File path shown in the diff header.
//	lines - The file's source lines.
//	fn - The function being replaced.
//	block - The proposed signature and docstring, unindented.
//
// Outputs:
//
//	string - The unified diff.
//	error - ErrInlineBody if the body starts on the signature line.
func RenderDiff(path string, lines []string, fn ast.FunctionRecord, block string) (string, error) {
	start, end, err := headerRange(fn)
	if err != nil {
		return "", err
	}
	if end > len(lines) {
		return "", fmt.Errorf("function %s ends past line %d", fn.Name, len(lines))
	}

	orig := lines[start-1 : end]
	proposed := indentBlock(block, fn.Indent)

	var body bytes.Buffer
	for _, line := range orig {
		body.WriteString("-" + line + "\n")
	}
	for _, line := range proposed {
		body.WriteString("+" + line + "\n")
	}

	name := diffPath(path)
	fd := &diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks: []*diff.Hunk{{
			OrigStartLine: int32(start),
			OrigLines:     int32(len(orig)),
			NewStartLine:  int32(start),
			NewLines:      int32(len(proposed)),
			Section:       fn.Signature,
			Body:          body.Bytes(),
		}},
	}

	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", fmt.Errorf("printing diff for %s: %w", fn.Name, err)
	}
	return string(out), nil
}
