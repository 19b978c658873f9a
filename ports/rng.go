package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for a specific stage/pair.
	// Pre-splitting streams this way keeps every bootstrap draw reproducible in
	// isolation regardless of worker scheduling, and independent of run
	// identity: the same seed over the same input replays the same draws.
	Stream(ctx context.Context, stageName, pairKey string, baseSeed int64) (*rand.Rand, error)
}
