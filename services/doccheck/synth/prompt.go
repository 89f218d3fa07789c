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
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

const docstringTemplate = `Generate a detailed google style docstring and provide type hints for the parameters and return type of the following Python function:

{{.function_signature}}

Do not change the default value, do not add imports. Please respond with only the updated function signature with docstring No other text or code needed
`

var docstringPrompt = prompts.NewPromptTemplate(docstringTemplate, []string{"function_signature"})

// codeBlockPattern matches the first fenced python block, across lines.
var codeBlockPattern = regexp.MustCompile("(?s)```python(.*?)```")

// FormatPrompt renders the docstring prompt for a function signature.
func FormatPrompt(signature string) (string, error) {
	out, err := docstringPrompt.Format(map[string]any{"function_signature": signature})
	if err != nil {
		return "", fmt.Errorf("formatting prompt: %w", err)
	}
	return out, nil
}

// ExtractCodeBlock returns the trimmed contents of the first ```python
// fenced block in a model response.
func ExtractCodeBlock(response string) (string, error) {
	m := codeBlockPattern.FindStringSubmatch(response)
	if m == nil {
		return "", ErrNoCodeBlock
	}
	return strings.TrimSpace(m[1]), nil
}
