// Package metrics provides Prometheus instrumentation for the archiver:
// API call counts and latency, retry counts, listing progress, sample
// classifications, and archive outcomes. A single Collector owns a private
// registry so tests and commands never share global metric state.
package metrics
