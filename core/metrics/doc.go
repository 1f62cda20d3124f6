// Package metrics exposes Prometheus collectors for reconciliation cycles.
//
// Collectors are registered on the registry passed to New, so tests can use a fresh
// prometheus.NewRegistry() per case. All observation methods are nil-safe: code paths that
// run without metrics (CLI one-shots, unit tests) pass a nil *Metrics.
package metrics
