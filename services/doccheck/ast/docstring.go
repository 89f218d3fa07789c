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
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tabSize is the column width tabs expand to before dedenting.
const tabSize = 8

// decodeStringLiteral returns the value of a single Python string literal.
//
// Description:
//
//	Handles string prefixes (r, u and their upper-case forms), single and
//	triple quotes, and backslash escapes for non-raw literals. Byte literals
//	and f-strings are not plain strings and return ok=false.
//
// Inputs:
//
//	raw - The literal exactly as written in source, prefix and quotes included.
//
// Outputs:
//
//	string - The decoded value.
//	bool - False if the literal is not a plain str constant.
func decodeStringLiteral(raw string) (string, bool) {
	i := strings.IndexAny(raw, `"'`)
	if i < 0 {
		return "", false
	}
	prefix := strings.ToLower(raw[:i])
	if strings.ContainsAny(prefix, "bf") {
		return "", false
	}
	isRaw := strings.Contains(prefix, "r")

	body := raw[i:]
	quote := body[:1]
	if strings.HasPrefix(body, quote+quote+quote) && len(body) >= 6 {
		quote = quote + quote + quote
	}
	if len(body) < 2*len(quote) {
		return "", false
	}
	body = body[len(quote) : len(body)-len(quote)]

	if isRaw {
		return body, true
	}
	return unescape(body), true
}

// unescape decodes Python backslash escapes. Unknown escapes are kept
// verbatim, backslash included.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch n := s[i]; n {
		case '\n':
			// line continuation
		case '\\', '\'', '"':
			b.WriteByte(n)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[n]
			if i+1+width <= len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32); err == nil && utf8.ValidRune(rune(v)) {
					b.WriteRune(rune(v))
					i += width
					continue
				}
			}
			b.WriteByte('\\')
			b.WriteByte(n)
		default:
			b.WriteByte('\\')
			b.WriteByte(n)
		}
	}
	return b.String()
}

// cleanDocstring normalizes docstring indentation.
//
// Description:
//
//	Tabs are expanded, leading whitespace is removed from the first line,
//	the smallest indentation of the remaining non-blank lines is removed from
//	each of them, and leading and trailing empty lines are dropped. This is
//	the normalization Python tooling applies when reading a docstring.
func cleanDocstring(doc string) string {
	lines := strings.Split(expandTabs(doc, tabSize), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := len(strings.TrimLeftFunc(line, unicode.IsSpace))
		if content > 0 {
			indent := len(line) - content
			if margin < 0 || indent < margin {
				margin = indent
			}
		}
	}

	lines[0] = strings.TrimLeftFunc(lines[0], unicode.IsSpace)
	if margin >= 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) > margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = ""
			}
		}
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

// expandTabs replaces tabs with spaces up to the next multiple of size,
// restarting the column count at every newline.
func expandTabs(s string, size int) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			pad := size - col%size
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
