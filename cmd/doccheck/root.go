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
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/doccheck/services/doccheck/ast"
	"github.com/AleutianAI/doccheck/services/doccheck/check"
	"github.com/AleutianAI/doccheck/services/doccheck/config"
	"github.com/AleutianAI/doccheck/services/doccheck/report"
	"github.com/AleutianAI/doccheck/services/doccheck/telemetry"
)

// app holds the global flags and the state they produce. Subcommands read
// cfg and logger after the root PersistentPreRunE has run.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath    string
	logLevel      string
	logFormat     string
	logFile       string
	traceExporter string
	otelMetrics   string
	metricsFile   string
	noColor       bool

	cfg      config.Config
	logger   *slog.Logger
	shutdown func(context.Context) error
	logClose io.Closer
	ready    bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		cfg:    config.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "doccheck",
		Short: "Check Python docstrings for missing sections and arguments",
		Long: `doccheck statically inspects Python source and reports functions whose
docstrings are missing, lack a required Args/Returns/Yields/Raises section,
or do not mention every parameter.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultFileName, "config file")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&a.logFile, "log-file", "", "also append JSON logs to this file")
	flags.StringVar(&a.traceExporter, "trace", telemetry.ExporterNone, "trace exporter: none, stdout or otlp")
	flags.StringVar(&a.otelMetrics, "otel-metrics", "", "otel metric exporter: none, stdout or prometheus (default prometheus with --metrics-file)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	flags.BoolVar(&a.noColor, "no-color", false, "disable styled output")

	root.AddCommand(
		newCheckCmd(a),
		newWatchCmd(a),
		newSuggestCmd(a),
		newInitCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup configures logging, loads the config file and starts telemetry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, closer, err := newLogger(a.stderr, a.logLevel, a.logFormat, a.logFile)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logClose = closer
	slog.SetDefault(logger)

	cfg, err := config.Load(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	a.cfg = cfg

	metrics := a.otelMetrics
	if metrics == "" {
		metrics = telemetry.ExporterNone
		if a.metricsFile != "" {
			metrics = telemetry.ExporterPrometheus
		}
	}

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	tcfg.TraceExporter = a.traceExporter
	tcfg.MetricExporter = metrics
	tcfg.Output = a.stderr

	shutdown, err := telemetry.Init(cmd.Context(), tcfg)
	if err != nil {
		return err
	}
	a.shutdown = shutdown
	a.ready = true
	return nil
}

// finish flushes telemetry and writes the metrics file.
func (a *app) finish() error {
	var errs []error
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.shutdown(ctx))
		cancel()
		a.shutdown = nil
	}
	if a.metricsFile != "" && a.ready {
		if err := telemetry.WriteMetricsFile(a.metricsFile); err != nil {
			errs = append(errs, err)
		} else {
			a.logger.Debug("Metrics written", slog.String("path", a.metricsFile))
		}
	}
	if a.logClose != nil {
		errs = append(errs, a.logClose.Close())
		a.logClose = nil
	}
	return errors.Join(errs...)
}

// styled reports whether text output should carry terminal styling.
func (a *app) styled() bool {
	if a.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := a.stdout.(*os.File)
	return ok && report.IsTerminal(f)
}

// scanFlags are the flags shared by commands that check files.
type scanFlags struct {
	skipInternal bool
	jobs         int
}

func (s *scanFlags) register(cmd *cobra.Command, withJobs bool) {
	cmd.Flags().BoolVar(&s.skipInternal, "skip-internal", false, "skip functions whose name starts with _")
	if withJobs {
		cmd.Flags().IntVarP(&s.jobs, "jobs", "j", 0, "files checked concurrently (default from config)")
	}
}

// build assembles the checker and scanner from config and flags.
func (s *scanFlags) build(a *app) (*check.Checker, *check.Scanner) {
	opts := check.Options{CheckInternal: a.cfg.CheckInternal && !s.skipInternal}
	parser := ast.NewPythonParser(ast.WithPythonMaxFileSize(a.cfg.MaxFileSize))
	checker := check.NewChecker(opts, check.WithLogger(a.logger), check.WithParser(parser))

	jobs := a.cfg.Jobs
	if s.jobs > 0 {
		jobs = s.jobs
	}
	scanner := check.NewScanner(checker,
		check.WithExtensions(a.cfg.Extensions),
		check.WithJobs(jobs),
		check.WithScannerLogger(a.logger))
	return checker, scanner
}
