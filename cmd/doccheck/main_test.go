// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/doccheck/services/doccheck/check"
	"github.com/AleutianAI/doccheck/services/doccheck/config"
	"github.com/AleutianAI/doccheck/services/doccheck/synth"
)

const (
	undocumented = "def f(a, b): return a + b\n"
	documented   = `def f(a, b):
    """Desc.

    Args:
        a: x
        b: y

    Returns:
        z
    """
    return a + b
`
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheck_PassingFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ok.py", documented)

	res := run(t, "check", path)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "PASS "+path)
	assert.NotContains(t, res.stderr, "level=WARN")
}

func TestCheck_MissingDocstring(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.py", undocumented)

	res := run(t, "check", path)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "FAIL "+path)
	assert.Equal(t, 1, strings.Count(res.stderr, "level=WARN"))
	assert.Contains(t, res.stderr, `msg="Docstring missing" function=f line=1`)
	assert.NotContains(t, res.stderr, "Error:")
}

func TestCheck_DirectoryJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/ok.py", documented)
	writeFile(t, dir, "b/bad.py", undocumented)

	res := run(t, "check", dir, "--format", "json", "--jobs", "2")
	assert.Equal(t, 1, res.code)

	var rep check.Report
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rep))
	require.Len(t, rep.Files, 2)
	assert.True(t, rep.Files[0].Passed)
	assert.False(t, rep.Files[1].Passed)
	assert.False(t, rep.Passed)
	assert.NotEmpty(t, rep.RunID)
}

func TestCheck_SkipInternal(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mod.py", "def _helper(x):\n    return x\n")

	assert.Equal(t, 1, run(t, "check", path).code)
	assert.Equal(t, 0, run(t, "check", path, "--skip-internal").code)
}

func TestCheck_Errors(t *testing.T) {
	dir := t.TempDir()

	res := run(t, "check", filepath.Join(dir, "missing"))
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error:")

	res = run(t, "check", dir, "--format", "xml")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown output format")

	res = run(t, "check")
	assert.Equal(t, 1, res.code)

	res = run(t, "check", dir, "--log-level", "loud")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid --log-level")
}

func TestCheck_JSONLogs(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.py", undocumented)

	res := run(t, "check", path, "--log-format", "json", "--log-level", "warn")
	assert.Equal(t, 1, res.code)

	lines := strings.Split(strings.TrimSpace(res.stderr), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Docstring missing", entry["msg"])
	assert.Equal(t, "f", entry["function"])
	assert.Equal(t, path, entry["file"])
}

func TestCheck_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "doccheck.yaml", "check_internal: false\n")
	path := writeFile(t, dir, "src/mod.py", "def _helper(x):\n    return x\n")

	assert.Equal(t, 0, run(t, "check", path, "--config", cfgPath).code)

	res := run(t, "check", path, "--config", filepath.Join(dir, "absent.yaml"))
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "failed to read the config file")
}

func TestCheck_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.py", undocumented)
	metrics := filepath.Join(dir, "doccheck.prom")

	res := run(t, "check", path, "--metrics-file", metrics)
	assert.Equal(t, 1, res.code)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `doccheck_findings_total{kind="missing_docstring"}`)
	assert.Contains(t, string(data), "doccheck_files_checked_total")
}

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, string, synth.GenerationParams) (string, error) {
	return "```python\ndef f(a: int, b: int) -> int:\n    \"\"\"Add.\"\"\"\n```", nil
}

func TestSuggest(t *testing.T) {
	orig := generatorFactory
	t.Cleanup(func() { generatorFactory = orig })

	var got config.LLMConfig
	generatorFactory = func(cfg config.LLMConfig) (synth.Generator, error) {
		got = cfg
		return stubGenerator{}, nil
	}

	src := "def f(a, b):\n    return a + b\n"
	path := writeFile(t, t.TempDir(), "mod.py", src)

	res := run(t, "suggest", path, "--model", "qwen")
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "ollama", got.Backend)
	assert.Equal(t, "qwen", got.Model)
	assert.Contains(t, res.stdout, "-def f(a, b):\n")
	assert.Contains(t, res.stdout, "+def f(a: int, b: int) -> int:\n")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src, string(after))
}

func TestSuggest_UnknownBackend(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mod.py", "def f(a):\n    return a\n")

	res := run(t, "suggest", path, "--backend", "llamafile")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown LLM backend")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", ".doccheck.yaml")

	res := run(t, "init", path)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Wrote "+path)

	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	res = run(t, "init", path)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "file already exists")
}

func TestVersion(t *testing.T) {
	res := run(t, "version")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "doccheck dev\n", res.stdout)
}

func TestCheck_LogFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.py", undocumented)
	logPath := filepath.Join(dir, "logs", "doccheck.jsonl")

	res := run(t, "check", path, "--log-file", logPath)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `msg="Docstring missing"`)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	var warned bool
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["level"] == "WARN" {
			warned = true
			assert.Equal(t, "Docstring missing", entry["msg"])
			assert.Equal(t, float64(1), entry["line"])
		}
	}
	assert.True(t, warned)
}
