// Package otel publishes goLicense engine metrics as OpenTelemetry instruments.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and an
// Int64ObservableGauge per latency histogram bucket. A single callback reads
// [goLicense.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
