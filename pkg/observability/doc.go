// Package observability bridges executor lifecycle events to Prometheus
// collectors. Hooks run synchronously on the pull loop, so the adapter
// only increments counters.
package observability
