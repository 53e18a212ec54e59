// Package http provides the HTTP REST API implementation.
//
// The server is an operator console over stored handles: it exposes
// handle listing, point-in-time status, aggregate reports, the restart
// action, health checks and Prometheus metrics. Submission stays with
// the CLI; the fabric remains the source of truth for task state, so
// every read here is a live query, not a cache.
package http
