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
	"regexp"
	"strings"
	"unicode"

	"github.com/AleutianAI/doccheck/services/doccheck/ast"
)

// Section is a docstring subsection a function may be required to carry.
type Section string

const (
	// SectionArgs documents parameters.
	SectionArgs Section = "args"

	// SectionReturns documents the returned value.
	SectionReturns Section = "returns"

	// SectionYields documents generated values.
	SectionYields Section = "yields"

	// SectionRaises documents raised exceptions.
	SectionRaises Section = "raises"
)

// Body patterns. They scan raw text, so a keyword inside a string literal or
// a comment in the body also counts.
var (
	returnPattern = regexp.MustCompile(`\Wreturn\W\S`)
	yieldPattern  = regexp.MustCompile(`\Wyield\W`)
	raisePattern  = regexp.MustCompile(`\Wraise\W`)
)

// RequiredSections returns the sections fn's docstring must contain, in the
// order args, returns, yields, raises.
//
// Description:
//
//	Args is required whenever the function has at least one non-receiver
//	parameter. The historical rule had a second branch for a single
//	parameter that is not self or cls; receivers are already removed by the
//	extractor, so both branches reduce to a non-empty parameter list.
//
//	Returns is required when the body has a return followed by a value; a
//	bare return does not count. Yields and Raises are required whenever the
//	keyword appears in the body.
//
// Inputs:
//
//	fn - The function record. Only Parameters and Body are read.
//
// Outputs:
//
//	[]Section - Required sections, possibly empty. Never nil.
func RequiredSections(fn ast.FunctionRecord) []Section {
	required := make([]Section, 0, 4)
	if len(fn.Parameters) > 0 {
		required = append(required, SectionArgs)
	}
	if returnPattern.MatchString(fn.Body) {
		required = append(required, SectionReturns)
	}
	if yieldPattern.MatchString(fn.Body) {
		required = append(required, SectionYields)
	}
	if raisePattern.MatchString(fn.Body) {
		required = append(required, SectionRaises)
	}
	return required
}

// NormalizeDocstring reduces each docstring line to its letters and digits.
//
// "Returns:" becomes "Returns" and "  Args :" becomes "Args", so section
// headers can be compared regardless of punctuation or indentation.
func NormalizeDocstring(doc string) []string {
	lines := strings.Split(doc, "\n")
	norm := make([]string, len(lines))
	for i, line := range lines {
		norm[i] = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsNumber(r) {
				return r
			}
			return -1
		}, line)
	}
	return norm
}

// hasSection reports whether any normalized line equals the section tag,
// ignoring case.
func hasSection(norm []string, section Section) bool {
	for _, line := range norm {
		if strings.ToLower(line) == string(section) {
			return true
		}
	}
	return false
}

// FirstMissingSection returns the first required section that fn's
// docstring lacks.
//
// Outputs:
//
//	Section - The missing section, empty when ok is true.
//	bool - True if every required section is present.
func FirstMissingSection(fn ast.FunctionRecord, required []Section) (Section, bool) {
	norm := NormalizeDocstring(fn.Docstring)
	for _, section := range required {
		if !hasSection(norm, section) {
			return section, false
		}
	}
	return "", true
}

// UndocumentedArguments returns the parameters whose names do not appear
// anywhere in fn's docstring. The match is a plain substring test, so a
// parameter named "a" is satisfied by the word "arguments".
func UndocumentedArguments(fn ast.FunctionRecord) []string {
	var missing []string
	for _, param := range fn.Parameters {
		if !strings.Contains(fn.Docstring, param) {
			missing = append(missing, param)
		}
	}
	return missing
}
