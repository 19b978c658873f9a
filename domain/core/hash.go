package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeRunFingerprint produces a deterministic fingerprint for a run from its
// seed, configuration echo, and table row counts. Identical inputs always yield
// the identical fingerprint, which is how replayed runs are verified.
func ComputeRunFingerprint(seed int64, configEcho string, counts map[string]int) Hash {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(fmt.Sprintf("seed=%d|", seed))
	data.WriteString(configEcho)
	for _, key := range keys {
		data.WriteString(fmt.Sprintf("|%s=%d", key, counts[key]))
	}

	return NewHash([]byte(data.String()))
}
