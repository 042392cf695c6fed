// Package checksum computes the "sha256:<hex>" digests shown in build
// reports and compared by verify.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const prefix = "sha256:"

// Bytes returns the digest of b.
func Bytes(b []byte) string {
	h := sha256.Sum256(b)
	return prefix + hex.EncodeToString(h[:])
}

// File returns the digest of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	return prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Short truncates a digest for display: sha256:abc123def456...
func Short(sum string) string {
	if len(sum) > 20 {
		return sum[:20] + "..."
	}
	return sum
}
