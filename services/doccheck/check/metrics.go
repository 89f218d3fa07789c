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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checker metrics, registered on the default registry.
var (
	filesChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doccheck_files_checked_total",
		Help: "Files checked, by result (passed, failed, skipped)",
	}, []string{"result"})

	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doccheck_findings_total",
		Help: "Documentation findings, by kind",
	}, []string{"kind"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "doccheck_scan_duration_seconds",
		Help:    "Time to scan a file or directory tree",
		Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
	})
)

// recordFileResult updates the file and finding counters for one result.
func recordFileResult(res FileResult) {
	switch {
	case res.Skipped:
		filesChecked.WithLabelValues("skipped").Inc()
	case res.Passed:
		filesChecked.WithLabelValues("passed").Inc()
	default:
		filesChecked.WithLabelValues("failed").Inc()
	}
	for _, f := range res.Findings {
		findingsTotal.WithLabelValues(string(f.Kind)).Inc()
	}
}
