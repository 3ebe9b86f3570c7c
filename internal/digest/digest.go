// Package digest computes the SHA-256 digests used to verify generated,
// uploaded and downloaded content.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

// New returns a streaming SHA-256 hasher.
func New() hash.Hash {
	return sha256.New()
}

// Sum returns the lowercase hex encoding of h's current digest.
func Sum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// Bytes returns the lowercase hex SHA-256 of b.
func Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Reader streams r through SHA-256 and returns the number of bytes read
// together with the hex digest.
func Reader(r io.Reader) (int64, string, error) {
	h := New()
	n, err := io.Copy(h, r)
	if err != nil {
		return n, "", fmt.Errorf("failed to compute digest: %w", err)
	}
	return n, Sum(h), nil
}

// Match reports whether two hex digests are equal, ignoring case.
func Match(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
