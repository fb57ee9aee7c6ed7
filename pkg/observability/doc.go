/*
Package observability turns lifecycle hooks into logs and Prometheus metrics.

Hooks from several sources are merged with Combine before they are handed to a game:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Combine(metrics.Hooks(), observability.LoggingHooks(logger))
*/
package observability
