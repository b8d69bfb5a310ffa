/*
Package observability turns layout lifecycle events into Prometheus metrics
and structured log lines.

Both are delivered as domain.LifecycleHooks, so they can be merged with each
other and with caller hooks before being handed to the runtime and renderer.
*/
package observability
