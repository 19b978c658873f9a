package rng

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"

	"ordstat/ports"
)

// StreamAdapter implements ports.RNGPort with hash-derived sub-seeds. Each
// named stream is an independent generator: there is no process-wide random
// state anywhere in a run.
type StreamAdapter struct{}

var _ ports.RNGPort = (*StreamAdapter)(nil)

// NewStreamAdapter creates the deterministic RNG adapter.
func NewStreamAdapter() *StreamAdapter {
	return &StreamAdapter{}
}

// SeededStream returns a generator derived from the operation name and seed.
func (a *StreamAdapter) SeededStream(_ context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(deriveSeed(name, seed))), nil
}

// Stream returns a generator for one stage/pair. The label deliberately
// excludes any run identity: two runs with the same base seed produce
// identical draws, and distinct pairs never share a sequence.
func (a *StreamAdapter) Stream(_ context.Context, stageName, pairKey string, baseSeed int64) (*rand.Rand, error) {
	label := fmt.Sprintf("%s|%s", stageName, pairKey)
	return rand.New(rand.NewSource(deriveSeed(label, baseSeed))), nil
}

// deriveSeed folds a label hash into the base seed. sha256 keeps the sub-seed
// spacing independent of label structure.
func deriveSeed(label string, base int64) int64 {
	sum := sha256.Sum256([]byte(label))
	derived := int64(binary.BigEndian.Uint64(sum[:8]))
	return derived ^ base
}
