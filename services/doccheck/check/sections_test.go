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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/doccheck/services/doccheck/ast"
)

func TestRequiredSections(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		body   string
		want   []Section
	}{
		{"nothing required", nil, "    x = 1\n    print(x)", []Section{}},
		{"bare return", nil, "    if x:\n        return\n    pass", []Section{}},
		{"bare return at end", nil, "    x = 1\n    return", []Section{}},
		{"return value", nil, "    return 5", []Section{SectionReturns}},
		{"return with paren", nil, "    return(5)", []Section{SectionReturns}},
		{"single param", []string{"a"}, "    pass", []Section{SectionArgs}},
		{"many params", []string{"a", "b"}, "    pass", []Section{SectionArgs}},
		{"yield bare", nil, "    yield\n", []Section{SectionYields}},
		{"yield value", nil, "    yield x", []Section{SectionYields}},
		{"raise", nil, "    raise ValueError()", []Section{SectionRaises}},
		{"returned identifier does not match", nil, "    returned = 1\n    x = returned", []Section{}},
		{"keyword inside string still counts", nil, "    print('we raise here')", []Section{SectionRaises}},
		{
			"all four in order",
			[]string{"a"},
			"    raise X()\n    yield a\n    return a",
			[]Section{SectionArgs, SectionReturns, SectionYields, SectionRaises},
		},
		{"keyword at body start is not bounded", nil, "return 5", []Section{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := ast.FunctionRecord{Name: "f", Parameters: tt.params, Body: tt.body}
			assert.Equal(t, tt.want, RequiredSections(fn))
		})
	}
}

func TestNormalizeDocstring(t *testing.T) {
	got := NormalizeDocstring("Summary line.\n\nArgs:\n    a (int): x\n  Returns :\nRaises-")
	assert.Equal(t, []string{"Summaryline", "", "Args", "aintx", "Returns", "Raises"}, got)
}

func TestFirstMissingSection(t *testing.T) {
	required := []Section{SectionArgs, SectionReturns}

	t.Run("all present case-insensitive", func(t *testing.T) {
		fn := ast.FunctionRecord{Docstring: "Desc.\n\nARGS:\n    a: x\n\nreturns:\n    z"}
		section, ok := FirstMissingSection(fn, required)
		assert.True(t, ok)
		assert.Empty(t, section)
	})

	t.Run("punctuation around header", func(t *testing.T) {
		fn := ast.FunctionRecord{Docstring: "Desc.\n\n-- Args --\n\n  *Returns*:"}
		_, ok := FirstMissingSection(fn, required)
		assert.True(t, ok)
	})

	t.Run("first missing reported", func(t *testing.T) {
		fn := ast.FunctionRecord{Docstring: "Desc.\n\nReturns:\n    z"}
		section, ok := FirstMissingSection(fn, required)
		assert.False(t, ok)
		assert.Equal(t, SectionArgs, section)
	})

	t.Run("header with trailing words does not count", func(t *testing.T) {
		fn := ast.FunctionRecord{Docstring: "Desc.\n\nArgs: a is a number\nReturns:"}
		section, ok := FirstMissingSection(fn, required)
		assert.False(t, ok)
		assert.Equal(t, SectionArgs, section)
	})

	t.Run("nothing required", func(t *testing.T) {
		_, ok := FirstMissingSection(ast.FunctionRecord{Docstring: "One line."}, []Section{})
		assert.True(t, ok)
	})
}

func TestUndocumentedArguments(t *testing.T) {
	fn := ast.FunctionRecord{
		Parameters: []string{"x", "count", "a"},
		Docstring:  "Desc.\n\nArgs:\n    count: how many\n    arguments: misc",
	}
	// "a" is satisfied by the substring in "arguments".
	assert.Equal(t, []string{"x"}, UndocumentedArguments(fn))
}

func TestUndocumentedArguments_AllDocumented(t *testing.T) {
	fn := ast.FunctionRecord{Parameters: []string{"a", "b"}, Docstring: "a and b"}
	assert.Empty(t, UndocumentedArguments(fn))
}
