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
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/doccheck/services/doccheck/check"
	"github.com/AleutianAI/doccheck/services/doccheck/report"
	"github.com/AleutianAI/doccheck/services/doccheck/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		flags    scanFlags
		format   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-check Python files under a directory whenever they change",
		Long: `Watch re-checks every created or modified source file and prints its
verdict. Violations never stop the watcher; interrupt it to exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			renderer := report.NewRenderer(f, a.styled())

			checker, scanner := flags.build(a)
			opts := watch.DefaultOptions()
			if debounce > 0 {
				opts.Debounce = debounce
			}

			w, err := watch.New(args[0], scanner, checker, func(res check.FileResult) {
				if err := renderer.RenderFile(a.stdout, res); err != nil {
					a.logger.Error("Cannot write result", slog.String("file", res.Path), slog.String("error", err.Error()))
				}
			}, opts, a.logger)
			if err != nil {
				return err
			}
			return w.Run(cmd.Context(), nil)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "result format: text, json or yaml")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before a changed file is checked (default 200ms)")
	return cmd
}
