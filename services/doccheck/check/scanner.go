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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions are the file suffixes scanned when none are configured.
var DefaultExtensions = []string{".py"}

// ScannerOption configures a Scanner instance.
type ScannerOption func(*Scanner)

// WithExtensions sets the file suffixes treated as source files.
func WithExtensions(exts []string) ScannerOption {
	return func(s *Scanner) {
		if len(exts) > 0 {
			s.extensions = exts
		}
	}
}

// WithJobs sets how many files are checked concurrently. Values below 1
// are ignored.
func WithJobs(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.jobs = n
		}
	}
}

// WithScannerLogger sets the logger for scan-level messages.
func WithScannerLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scanner checks a single file or every source file under a directory.
//
// Description:
//
//	Files are independent: no state is shared between them, so they may be
//	checked concurrently. With the default of one job they are checked
//	sequentially in path order. The report is sorted by path either way.
//
// Thread Safety:
//
//	Scanner is safe for concurrent use.
type Scanner struct {
	checker    *Checker
	extensions []string
	jobs       int
	logger     *slog.Logger
}

// NewScanner creates a Scanner that checks files with checker.
func NewScanner(checker *Checker, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		checker:    checker,
		extensions: DefaultExtensions,
		jobs:       1,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Matches reports whether path has one of the scanner's source suffixes.
func (s *Scanner) Matches(path string) bool {
	for _, ext := range s.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Discover returns the files a scan of root would check.
//
// Description:
//
//	A root ending in a source suffix is returned as-is, whether or not it
//	exists, so the file checker can report it. Any other root must be a
//	directory; it is walked recursively and every regular file with a
//	source suffix is returned in lexical order.
//
// Outputs:
//   - []string: Files to check. May be empty.
//   - error: ErrPathNotFound if root does not exist, ErrInvalidInput if it
//     is neither a directory nor a source file.
func (s *Scanner) Discover(root string) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidInput)
	}
	if s.Matches(root) {
		return []string{root}, nil
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is neither a directory nor a source file", ErrInvalidInput, root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Skipping unreadable path",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && s.Matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// Scan checks every file Discover finds under root.
//
// Description:
//
//	Each file gets its own verdict. A file that cannot be read or parsed
//	is recorded as skipped and counts as failing. The overall verdict
//	passes only if every file passes; an empty scan passes.
//
// Inputs:
//   - ctx: Context for cancellation. A canceled scan returns ctx.Err().
//   - root: A source file or a directory.
//
// Outputs:
//   - *Report: Per-file results and the overall verdict.
//   - error: Discovery failures and cancellation only. Documentation
//     violations are never errors.
//
// Example:
//
//	report, err := scanner.Scan(ctx, "src/")
//	if err != nil {
//	    return err
//	}
//	if !report.Passed {
//	    os.Exit(1)
//	}
func (s *Scanner) Scan(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:          uuid.NewString(),
		Root:           root,
		StartedAtMilli: start.UnixMilli(),
		Passed:         true,
	}

	if s.checker.Options().CheckInternal {
		s.logger.Info("Checking all functions (including internal functions)",
			slog.String("run_id", report.RunID))
	} else {
		s.logger.Info("Ignoring checks on any functions prefixed by '_'",
			slog.String("run_id", report.RunID))
	}

	files, err := s.Discover(root)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)
	for i, path := range files {
		g.Go(func() error {
			res, err := s.checker.CheckFile(gctx, path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				res = FileResult{Path: path, Skipped: true, Error: err.Error()}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		recordFileResult(res)
		if !res.Passed {
			report.Passed = false
		}
	}
	report.Files = results
	report.Duration = time.Since(start)
	scanDuration.Observe(report.Duration.Seconds())

	s.logger.Info("Scan complete",
		slog.String("run_id", report.RunID),
		slog.Int("files", len(results)),
		slog.Int("findings", report.FindingCount()),
		slog.Bool("passed", report.Passed))
	return report, nil
}
