// Package ports defines the interfaces between the campaign core and
// its adapters: the remote compute fabric, handle storage and metrics.
//
// Implementations:
//   - pkg/adapters/fabric: http (production), memory (testing)
//   - pkg/adapters/store: file, redis, memory
//   - pkg/adapters/metrics: prometheus, noop
package ports
