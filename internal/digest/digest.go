// Package digest computes the content address of a submission: the
// lowercase hex SHA-256 of its raw bytes. It is the global uniqueness key
// for stored photos, so it must stay stable across releases.
package digest

import (
	"encoding/hex"

	sha256 "github.com/minio/sha256-simd"
)

// Size is the length of a digest string in characters.
const Size = sha256.Size * 2

// Sum returns the hex digest of b.
func Sum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s looks like a digest produced by Sum.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
