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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeStringLiteral(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"double", `"hello"`, "hello", true},
		{"single", `'hello'`, "hello", true},
		{"triple double", `"""a "quoted" word"""`, `a "quoted" word`, true},
		{"triple single", `'''x'''`, "x", true},
		{"empty", `""`, "", true},
		{"empty triple", `""""""`, "", true},
		{"escapes", `"a\tb\\n\n"`, "a\tb\\n\n", true},
		{"raw keeps backslashes", `r"a\nb"`, `a\nb`, true},
		{"upper raw", `R'''\d'''`, `\d`, true},
		{"unicode prefix", `u"x"`, "x", true},
		{"hex escape", `"\x41"`, "A", true},
		{"unicode escape", `"\u00e9"`, "é", true},
		{"octal escape", `"\101"`, "A", true},
		{"unknown escape kept", `"\q"`, `\q`, true},
		{"line continuation", "\"a\\\nb\"", "ab", true},
		{"bytes", `b"x"`, "", false},
		{"fstring", `f"x"`, "", false},
		{"raw fstring", `rf"x"`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeStringLiteral(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanDocstring(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single line", "Summary.", "Summary."},
		{"leading space on first line", "   Summary.  ", "Summary.  "},
		{
			"dedent following lines",
			"Summary.\n\n    Args:\n        a: x\n    ",
			"Summary.\n\nArgs:\n    a: x",
		},
		{
			"blank first line dropped",
			"\n    Summary.\n\n    Returns:\n        int\n    ",
			"Summary.\n\nReturns:\n    int",
		},
		{"tabs expand", "Summary.\n\tArgs:\n\t    a: x", "Summary.\nArgs:\n    a: x"},
		{"whitespace only line kept", "\n   \n", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanDocstring(tt.in))
		})
	}
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "ab      c", expandTabs("ab\tc", 8))
	assert.Equal(t, "        x\n        y", expandTabs("\tx\n\ty", 8))
	assert.Equal(t, "plain", expandTabs("plain", 8))
}
