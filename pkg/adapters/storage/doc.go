// Package storage provides mod store implementations.
//
// Implementations:
//   - memory: In-memory slice, state resets on restart (default)
//   - redis: Redis with JSON serialization, survives restarts
package storage
