/*
Package observability provides lifecycle hooks for monitoring the fasim simulator.

Metrics exports Prometheus counters and histograms fed by the hooks, LoggingHooks
writes every step and verdict to a structured logger, and Chain combines several
hook sets into one.
*/
package observability
