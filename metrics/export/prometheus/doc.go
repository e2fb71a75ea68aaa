// Package prometheus provides Prometheus collectors for goPin metrics.
//
// [NewPrometheusExporter] accepts an [goPin.Engine] and exposes an [http.Handler]
// that renders all goPin counters and histograms in Prometheus text exposition format.
// Counter names are prefixed gopin_*_total; the single histogram is
// gopin_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
