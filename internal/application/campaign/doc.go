// Package campaign implements the task-lifecycle core:
//   - ValidateScope checks the three-part namespace before any remote call
//   - Submitter expands a graph into fabric tasks and returns a durable handle
//   - Monitor classifies every task under a handle at a point in time
//   - Restarter re-queues exactly the errored tasks under a handle
//   - Gatherer aggregates completed-task estimates per experiment
//
// The fabric is the single source of truth for task state. The core
// holds no mutable state between calls; Monitor and Gatherer can be
// invoked concurrently from independent processes, and Submitter and
// Restarter are idempotent under at-least-once retry.
package campaign
