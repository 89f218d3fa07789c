// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders scan reports and docstring proposals for humans
// and machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/doccheck/services/doccheck/check"
	"github.com/AleutianAI/doccheck/services/doccheck/synth"
)

// ErrUnknownFormat indicates an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects how a report is written.
type Format string

const (
	// FormatText is the line-oriented human format.
	FormatText Format = "text"

	// FormatJSON writes the report as indented JSON.
	FormatJSON Format = "json"

	// FormatYAML writes the report as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want text, json or yaml)", ErrUnknownFormat, name)
	}
}

var (
	colorPass  = lipgloss.Color("#2CD7C7")
	colorWarn  = lipgloss.Color("#F4D03F")
	colorFail  = lipgloss.Color("#E74C3C")
	colorMuted = lipgloss.Color("#2C4A54")

	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPass)
	skipStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWarn)
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorFail)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	addStyle   = lipgloss.NewStyle().Foreground(colorPass)
	delStyle   = lipgloss.NewStyle().Foreground(colorFail)
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Renderer writes reports in one format.
//
// Thread Safety: Immutable after creation.
type Renderer struct {
	format Format
	styled bool
}

// NewRenderer creates a Renderer. styled only affects FormatText.
func NewRenderer(format Format, styled bool) *Renderer {
	if format == "" {
		format = FormatText
	}
	return &Renderer{format: format, styled: styled}
}

func (r *Renderer) paint(style lipgloss.Style, s string) string {
	if !r.styled {
		return s
	}
	return style.Render(s)
}

// Render writes rep to w.
//
// Description:
//
//	The text format prints one verdict line per file, one line per
//	finding beneath failed files, and a summary line. JSON and YAML emit
//	the full report structure.
//
// Outputs:
//
//	error - Write or encoding failure.
func (r *Renderer) Render(w io.Writer, rep *check.Report) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatYAML:
		return writeYAML(w, rep)
	case FormatText:
		return r.renderText(w, rep)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.format)
	}
}

func (r *Renderer) renderText(w io.Writer, rep *check.Report) error {
	var b strings.Builder
	for _, f := range rep.Files {
		r.writeFileText(&b, f)
	}

	failed := len(rep.FailedFiles())
	summary := fmt.Sprintf("%d finding(s), %d of %d file(s) failed", rep.FindingCount(), failed, len(rep.Files))
	if rep.Passed {
		summary = r.paint(passStyle, summary)
	} else {
		summary = r.paint(failStyle, summary)
	}
	fmt.Fprintf(&b, "%s %s\n", summary, r.paint(mutedStyle, "[run "+rep.RunID+"]"))

	_, err := io.WriteString(w, b.String())
	return err
}

// writeFileText writes the verdict line and findings of one file.
func (r *Renderer) writeFileText(b *strings.Builder, f check.FileResult) {
	switch {
	case f.Skipped:
		fmt.Fprintf(b, "%s %s %s\n", r.paint(skipStyle, "SKIP"), f.Path, r.paint(mutedStyle, "("+f.Error+")"))
	case f.Passed:
		fmt.Fprintf(b, "%s %s\n", r.paint(passStyle, "PASS"), f.Path)
	default:
		fmt.Fprintf(b, "%s %s\n", r.paint(failStyle, "FAIL"), f.Path)
	}
	for _, finding := range f.Findings {
		fmt.Fprintf(b, "  %s:%d %s %s\n", f.Path, finding.Line, finding.Function, describe(finding))
	}
}

// RenderFile writes a single file verdict. JSON and YAML emit one
// document per call.
func (r *Renderer) RenderFile(w io.Writer, res check.FileResult) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatYAML:
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
		return writeYAML(w, res)
	case FormatText:
		var b strings.Builder
		r.writeFileText(&b, res)
		_, err := io.WriteString(w, b.String())
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.format)
	}
}

// describe turns a finding into the phrase shown in text output.
func describe(f check.Finding) string {
	switch f.Kind {
	case check.FindingMissingDocstring:
		return "docstring missing"
	case check.FindingMissingSection:
		return fmt.Sprintf("missing %q section", string(f.Section))
	case check.FindingUndocumentedArgument:
		return fmt.Sprintf("argument %q not documented", f.Argument)
	default:
		return string(f.Kind)
	}
}

// FileProposals groups the proposals made for one file.
type FileProposals struct {
	Path      string           `json:"path" yaml:"path"`
	Proposals []synth.Proposal `json:"proposals" yaml:"proposals"`
}

// RenderProposals writes docstring proposals to w. The text format is a
// concatenated unified diff, colored when styled.
func (r *Renderer) RenderProposals(w io.Writer, files []FileProposals) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, files)
	case FormatYAML:
		return writeYAML(w, files)
	case FormatText:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.format)
	}

	var b strings.Builder
	for _, f := range files {
		for _, p := range f.Proposals {
			for _, line := range strings.SplitAfter(p.Diff, "\n") {
				b.WriteString(r.colorDiffLine(line))
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) colorDiffLine(line string) string {
	if !r.styled || line == "" {
		return line
	}
	body := strings.TrimSuffix(line, "\n")
	nl := line[len(body):]
	switch {
	case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
		return passStyle.Render(body) + nl
	case strings.HasPrefix(body, "@@"):
		return mutedStyle.Render(body) + nl
	case strings.HasPrefix(body, "+"):
		return addStyle.Render(body) + nl
	case strings.HasPrefix(body, "-"):
		return delStyle.Render(body) + nl
	default:
		return line
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
