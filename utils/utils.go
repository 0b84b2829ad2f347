package utils

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Hash creates an ID from a string.
func Hash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Hasher accumulates strings into a single 64 bits digest.
// Each chunk is terminated by a separator so that ("ab", "c") and ("a", "bc")
// do not collide.
type Hasher struct {
	d *xxhash.Digest
}

func NewHasher() Hasher { return Hasher{d: xxhash.New()} }

func (h Hasher) WriteString(chunks ...string) {
	for _, s := range chunks {
		h.d.WriteString(s)
		h.d.Write([]byte{0})
	}
}

// WriteMap hashes the entries of m in key order.
func (h Hasher) WriteMap(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.WriteString(k, m[k])
	}
}

func (h Hasher) Sum64() uint64 { return h.d.Sum64() }

// AsciiLower lower cases ASCII letters only.
func AsciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
