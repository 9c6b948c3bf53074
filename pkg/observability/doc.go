/*
Package observability exposes editor activity as Prometheus metrics.

Metrics attaches to the drag engine, to pages and their history, and wraps
page stores, so the HTTP adapter can serve the counters on /metrics. Hooks
lets callers observe the same moments without Prometheus.
*/
package observability
