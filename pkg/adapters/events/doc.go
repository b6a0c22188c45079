// Package events provides catalog activity event bus implementations.
//
// Implementations:
//   - memory: In-process fan-out (default)
//   - redis: Redis Streams, shared between instances
package events
