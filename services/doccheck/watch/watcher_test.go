// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/doccheck/services/doccheck/check"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startWatcher runs a watcher on dir and returns the result channel.
func startWatcher(t *testing.T, dir string) <-chan check.FileResult {
	t.Helper()

	checker := check.NewChecker(check.DefaultOptions(), check.WithLogger(quietLogger()))
	scanner := check.NewScanner(checker)
	results := make(chan check.FileResult, 16)

	opts := DefaultOptions()
	opts.Debounce = 50 * time.Millisecond
	w, err := New(dir, scanner, checker, func(res check.FileResult) { results <- res }, opts, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, ready) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
	return results
}

func waitFor(t *testing.T, results <-chan check.FileResult, path string) check.FileResult {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case res := <-results:
			if res.Path == path {
				return res
			}
		case <-deadline:
			t.Fatalf("no result for %s", path)
			return check.FileResult{}
		}
	}
}

func TestWatcher_RechecksWrittenFile(t *testing.T) {
	dir := t.TempDir()
	results := startWatcher(t, dir)

	path := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("def f(a):\n    return a\n"), 0o644))

	res := waitFor(t, results, path)
	assert.False(t, res.Passed)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, check.FindingMissingDocstring, res.Findings[0].Kind)

	fixed := "def f(a):\n    \"\"\"Echo.\n\n    Args:\n        a: value\n\n    Returns:\n        a\n    \"\"\"\n    return a\n"
	require.NoError(t, os.WriteFile(path, []byte(fixed), 0o644))

	res = waitFor(t, results, path)
	assert.True(t, res.Passed)
}

func TestWatcher_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	results := startWatcher(t, dir)

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	path := filepath.Join(sub, "inner.py")
	require.NoError(t, os.WriteFile(path, []byte("def g():\n    pass\n"), 0o644))

	res := waitFor(t, results, path)
	assert.False(t, res.Passed)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	results := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("def f(): pass\n"), 0o644))
	path := filepath.Join(dir, "ok.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	res := waitFor(t, results, path)
	assert.True(t, res.Passed)

	select {
	case extra := <-results:
		assert.NotEqual(t, filepath.Join(dir, "notes.txt"), extra.Path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresNewIgnoredDirectories(t *testing.T) {
	dir := t.TempDir()
	results := startWatcher(t, dir)

	for _, sub := range []string{".venv/lib", "__pycache__", ".git/hooks"} {
		nested := filepath.Join(dir, filepath.FromSlash(sub))
		require.NoError(t, os.MkdirAll(nested, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "site.py"), []byte("def f(a):\n    return a\n"), 0o644))
	}
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(dir, "ok.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case res := <-results:
			if res.Path == path {
				return
			}
			t.Fatalf("checked a file in an ignored directory: %s", res.Path)
		case <-deadline:
			t.Fatalf("no result for %s", path)
		}
	}
}

func TestWatcher_UnparsableFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	results := startWatcher(t, dir)

	path := filepath.Join(dir, "broken.py")
	require.NoError(t, os.WriteFile(path, []byte("def f(:\n"), 0o644))

	res := waitFor(t, results, path)
	assert.True(t, res.Skipped)
	assert.False(t, res.Passed)
}

func TestNew_Errors(t *testing.T) {
	checker := check.NewChecker(check.DefaultOptions())
	scanner := check.NewScanner(checker)

	_, err := New(filepath.Join(t.TempDir(), "missing"), scanner, checker, nil, DefaultOptions(), nil)
	assert.ErrorIs(t, err, check.ErrPathNotFound)

	file := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = New(file, scanner, checker, nil, DefaultOptions(), nil)
	assert.ErrorIs(t, err, check.ErrInvalidInput)
}
