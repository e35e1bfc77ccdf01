// Package observability provides the structured logger and the
// authentication metrics for the petclinic API.
//
// Logging is zap based. Metrics are Prometheus counters registered on a
// private registry so tests can build as many collectors as they need.
package observability
