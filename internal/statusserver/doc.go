// Package statusserver hosts the read-only HTTP surface of the node:
// peer health status, Prometheus metrics, and a liveness endpoint.
package statusserver
