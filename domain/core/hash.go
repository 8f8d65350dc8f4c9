package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a content hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough for logs
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// Key separators. Control characters keep keys unambiguous for names that
// contain commas or pipes.
const (
	NameSeparator = "\x1f"
	PartSeparator = "\x1e"
)

// SetKey canonicalizes a set of names: sorted, deduplicated, joined by NameSeparator.
// Two name lists with the same members always produce the same key.
func SetKey(names []string) string {
	sorted := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, NameSeparator)
}

// ComputeSetHash hashes several name sets in order, e.g. dimensions then measures
func ComputeSetHash(sets ...[]string) Hash {
	var data strings.Builder
	for i, set := range sets {
		if i > 0 {
			data.WriteString(PartSeparator)
		}
		data.WriteString(SetKey(set))
	}
	return NewHash([]byte(data.String()))
}
