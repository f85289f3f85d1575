/*
Package observability turns console lifecycle events into Prometheus metrics
and structured log lines.

Metrics are registered on a caller-supplied registry so that tests and
embedders can keep them apart from the global one:

	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := observability.Chain(m.Hooks(), observability.LogHooks(logger))
*/
package observability
