// Package prometheus exposes goLicense engine metrics through client_golang.
//
// [NewCollector] returns a prometheus.Collector that reads
// [goLicense.Engine.MetricsSnapshot] on each scrape. Register it with any
// registry, or mount [Handler] to serve it alone. Counter names are prefixed
// golicense_ and end in _total; latency histograms end in _seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
