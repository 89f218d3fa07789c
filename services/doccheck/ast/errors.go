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

import "errors"

// Sentinel errors for the ast package.
//
// Every failure ParseFile can return wraps exactly one of these, so callers
// can classify file-access problems with errors.Is.
var (
	// ErrFileNotFound indicates the source file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidContent indicates the file could not be decoded as UTF-8 text.
	ErrInvalidContent = errors.New("invalid content")

	// ErrSyntax indicates the file is not syntactically valid Python.
	ErrSyntax = errors.New("syntax error")

	// ErrFileTooLarge indicates the file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)
