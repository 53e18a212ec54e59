// Package store provides reference handle storage implementations.
//
// Implementations:
//   - file: JSON file per handle on local disk (default)
//   - redis: Redis with JSON serialization for shared operator setups
//   - memory: In-memory for testing
package store
