// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command doccheck checks Python docstrings for completeness.
//
// Usage:
//
//	doccheck check path/to/project
//	doccheck check module.py --skip-internal --format json
//	doccheck watch path/to/project
//	doccheck suggest module.py --backend ollama --model llama3.1
//	doccheck init
//
// The check command exits 0 when every file passes and 1 otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// errCheckFailed marks a completed scan with failing files. It sets the
// exit code without printing an error.
var errCheckFailed = errors.New("docstring check failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if ferr := a.finish(); ferr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", ferr)
		if err == nil {
			return 1
		}
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errCheckFailed):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
