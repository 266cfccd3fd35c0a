// Package metrics collects peer health telemetry. Components emit events
// into a buffered channel; a collector goroutine folds them into per-peer
// totals and Prometheus series. Gauges derived from tracker state
// (breaker state, cooldown remaining) are refreshed by a periodic exporter.
package metrics
