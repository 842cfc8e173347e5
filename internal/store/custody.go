package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashReferenceFile computes the SHA256 of a reference image for the
// chain-of-custody manifest. Verifying a stored fingerprint later means
// re-hashing the archived files and comparing against this record.
func HashReferenceFile(path string) (ReferenceFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReferenceFile{}, fmt.Errorf("open reference file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ReferenceFile{}, fmt.Errorf("hash reference file %s: %w", path, err)
	}
	return ReferenceFile{Path: path, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}
