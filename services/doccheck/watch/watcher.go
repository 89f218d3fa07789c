// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-checks source files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/doccheck/services/doccheck/check"
)

// ResultHandler receives the verdict for each re-checked file.
type ResultHandler func(check.FileResult)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long a file must be quiet before it is re-checked.
	// Default: 200ms
	Debounce time.Duration

	// IgnoreDirs are directory base names that are never watched.
	IgnoreDirs []string
}

// DefaultOptions returns the standard watch settings.
func DefaultOptions() Options {
	return Options{
		Debounce:   200 * time.Millisecond,
		IgnoreDirs: []string{".git", ".hg", ".venv", "venv", "node_modules", "__pycache__", ".mypy_cache", ".tox"},
	}
}

// Watcher re-checks created or modified source files under a root.
//
// # Description
//
// Every directory under root is watched, including directories created
// after Run starts. Write and create events for files the scanner accepts
// are collected; once a file has been quiet for the debounce window it is
// checked and its result handed to the handler. Violations never stop the
// watcher.
//
// # Thread Safety
//
// Run must be called at most once. The handler is called from Run's
// goroutine only.
type Watcher struct {
	root    string
	scanner *check.Scanner
	checker *check.Checker
	handler ResultHandler
	opts    Options
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
}

// New creates a Watcher for root.
//
// # Inputs
//
//   - root: Directory to watch. Must exist.
//   - scanner: Decides which files are source files.
//   - checker: Checks each changed file.
//   - handler: Receives results. May be nil.
//   - opts: Watch settings.
//   - logger: Destination for watcher messages. Nil uses slog.Default.
//
// # Outputs
//
//   - *Watcher: Ready to Run.
//   - error: check.ErrPathNotFound, check.ErrInvalidInput for a
//     non-directory root, or an fsnotify setup failure.
func New(root string, scanner *check.Scanner, checker *check.Checker, handler ResultHandler, opts Options, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", check.ErrPathNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", check.ErrInvalidInput, root)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Watcher{
		root:    root,
		scanner: scanner,
		checker: checker,
		handler: handler,
		opts:    opts,
		logger:  logger,
		fsw:     fsw,
	}, nil
}

// Run watches until ctx is canceled. It returns nil on cancellation.
//
// # Inputs
//
//   - ctx: Stops the watcher when canceled.
//   - ready: Closed once the initial directories are watched. May be nil.
func (w *Watcher) Run(ctx context.Context, ready chan<- struct{}) error {
	defer w.fsw.Close()

	if err := w.addRecursive(w.root, nil); err != nil {
		return err
	}
	w.logger.Info("Watching for changes", slog.String("root", w.root))
	if ready != nil {
		close(ready)
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watch stopped", slog.String("root", w.root))
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event, pending) {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			w.flush(ctx, pending)
		}
	}
}

// handleEvent records event and reports whether a file became pending.
func (w *Watcher) handleEvent(event fsnotify.Event, pending map[string]struct{}) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if slices.Contains(w.opts.IgnoreDirs, filepath.Base(event.Name)) {
			return false
		}
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(event.Name, pending); err != nil {
				w.logger.Warn("Cannot watch directory",
					slog.String("dir", event.Name),
					slog.String("error", err.Error()))
			}
		}
		return len(pending) > 0
	}
	if !w.scanner.Matches(event.Name) {
		return false
	}

	pending[event.Name] = struct{}{}
	return true
}

// flush checks every pending file in path order.
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	clear(pending)
	slices.Sort(paths)

	for _, path := range paths {
		res, err := w.checker.CheckFile(ctx, path)
		if err != nil {
			res = check.FileResult{Path: path, Skipped: true, Error: err.Error()}
		}
		if w.handler != nil {
			w.handler(res)
		}
	}
}

// addRecursive watches dir and every non-ignored directory beneath it.
// dir itself is not matched against the ignore list.
// When pending is non-nil, source files already present are queued; they
// may have been written before the watch was in place.
func (w *Watcher) addRecursive(dir string, pending map[string]struct{}) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if pending != nil && w.scanner.Matches(path) {
				pending[path] = struct{}{}
			}
			return nil
		}
		if path != dir && slices.Contains(w.opts.IgnoreDirs, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
