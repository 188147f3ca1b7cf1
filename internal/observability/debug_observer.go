// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability provides the --debug tracer: indented step
// markers, one-line details, and metric values written to stderr as
// geoipsed works through provider initialization and each file.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DebugObserver writes indented, human-readable step traces. It is only
// ever constructed when --debug is set; a nil *DebugObserver means
// tracing is off, and callers guard every call site on that nil check
// rather than threading a level through.
type DebugObserver struct {
	writer io.Writer
	indent int
}

// NewDebugObserver creates a debug observer writing to w.
func NewDebugObserver(w io.Writer) *DebugObserver {
	return &DebugObserver{writer: w}
}

// StartStep begins a processing step with indentation, returning a
// completion function that reports success/failure and elapsed time.
func (d *DebugObserver) StartStep(component, step, filePath string) func(success bool, details string) {
	start := time.Now()
	indentStr := strings.Repeat("  ", d.indent)

	fmt.Fprintf(d.writer, "%s🔄 %s: %s (%s)\n", indentStr, component, step, filePath)
	d.indent++

	return func(success bool, details string) {
		d.indent--
		duration := time.Since(start)
		indentStr := strings.Repeat("  ", d.indent)

		if success {
			fmt.Fprintf(d.writer, "%s✅ %s: %s completed (%dms) %s\n",
				indentStr, component, step, duration.Milliseconds(), details)
		} else {
			fmt.Fprintf(d.writer, "%s❌ %s: %s failed (%dms) %s\n",
				indentStr, component, step, duration.Milliseconds(), details)
		}
	}
}

// LogDetail logs a detail within the current step.
func (d *DebugObserver) LogDetail(component, detail string) {
	indentStr := strings.Repeat("  ", d.indent)
	fmt.Fprintf(d.writer, "%s   → %s: %s\n", indentStr, component, detail)
}

// LogMetric logs a metric value.
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	indentStr := strings.Repeat("  ", d.indent)
	fmt.Fprintf(d.writer, "%s   📊 %s: %s = %v\n", indentStr, component, metric, value)
}
