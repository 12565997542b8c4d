// Package metrics provides observability hooks for post-build runs.
//
// Components receive a Recorder through their constructors and default to
// NoopRecorder, so metrics are optional everywhere. The CLI swaps in a
// PrometheusRecorder when metrics.textfile is configured and writes the
// registry to that file after each run for the node-exporter textfile
// collector (a post-build step is too short-lived to be scraped).
package metrics
