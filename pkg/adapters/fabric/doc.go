// Package fabric provides remote compute fabric clients.
//
// Implementations:
//   - http: REST client for a live fabric deployment
//   - memory: In-memory fabric for testing, with operator knobs to
//     drive task state transitions
package fabric
