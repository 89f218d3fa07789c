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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/doccheck/services/doccheck/ast"
	"github.com/AleutianAI/doccheck/services/doccheck/check"
	"github.com/AleutianAI/doccheck/services/doccheck/report"
	"github.com/AleutianAI/doccheck/services/doccheck/synth"
)

// generatorFactory builds the model backend. Tests replace it.
var generatorFactory = synth.NewGenerator

func newSuggestCmd(a *app) *cobra.Command {
	var (
		backend string
		model   string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "suggest <path>",
		Short: "Propose docstrings and type hints for undocumented functions",
		Long: `Suggest asks a language model for a documented, type-hinted header for
every function missing a docstring or a type hint, and prints each proposal
as a unified diff. Source files are never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			llm := a.cfg.LLM
			if backend != "" {
				llm.Backend = backend
			}
			if model != "" {
				llm.Model = model
			}
			gen, err := generatorFactory(llm)
			if err != nil {
				return err
			}

			temperature := llm.Temperature
			parser := ast.NewPythonParser(ast.WithPythonMaxFileSize(a.cfg.MaxFileSize))
			synthesizer := synth.NewSynthesizer(gen, synth.GenerationParams{Temperature: &temperature}, parser, a.logger)

			scanner := check.NewScanner(check.NewChecker(check.DefaultOptions()),
				check.WithExtensions(a.cfg.Extensions),
				check.WithScannerLogger(a.logger))
			paths, err := scanner.Discover(args[0])
			if err != nil {
				return err
			}

			var files []report.FileProposals
			for _, path := range paths {
				a.logger.Info("Processing file", slog.String("file", path))
				proposals, err := synthesizer.SuggestFile(cmd.Context(), path)
				if err != nil {
					if ctxErr := cmd.Context().Err(); ctxErr != nil {
						return ctxErr
					}
					a.logger.Error("Failed to load file", slog.String("file", path), slog.String("error", err.Error()))
					continue
				}
				if len(proposals) > 0 {
					files = append(files, report.FileProposals{Path: path, Proposals: proposals})
				}
			}

			return report.NewRenderer(f, a.styled()).RenderProposals(a.stdout, files)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "model backend: ollama or openai (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "model name (default per backend)")
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "output format: text, json or yaml")
	return cmd
}
