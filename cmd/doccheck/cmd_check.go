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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/doccheck/services/doccheck/report"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		flags  scanFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Check a Python file or every Python file under a directory",
		Long: `Check reports every function with a missing docstring, a missing
required section, or an undocumented argument. Each finding is logged as one
warning line. The exit status is 0 only if every file passes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			_, scanner := flags.build(a)
			rep, err := scanner.Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := report.NewRenderer(f, a.styled()).Render(a.stdout, rep); err != nil {
				return err
			}
			if !rep.Passed {
				return errCheckFailed
			}
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "report format: text, json or yaml")
	return cmd
}
