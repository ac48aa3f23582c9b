// Package checksum computes the SHA-256 digests used to identify stored
// objects and to derive bundle identities.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sort"
)

// fileChunkSize is the read size used when digesting a file.
const fileChunkSize = 16 * 1024

// File streams the file at path through SHA-256 and returns the hex digest.
// The file is read in fixed-size chunks and never held in memory whole.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, fileChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bundle derives a bundle digest from its children's digests: the child
// checksums are sorted ascending and concatenated before hashing, so the
// result does not depend on insertion order.
func Bundle(childChecksums []string) string {
	sorted := make([]string, len(childChecksums))
	copy(sorted, childChecksums)
	sort.Strings(sorted)

	h := sha256.New()
	for _, sum := range sorted {
		h.Write([]byte(sum))
	}
	return hex.EncodeToString(h.Sum(nil))
}
