// Package fileid derives stable identifiers for documents seen by the hot folder.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
)

const prefix = "sha256:"

// ContentID returns an identifier for data. Equal content always yields the
// same ID, wherever the file lives.
func ContentID(data []byte) string {
	hash := sha256.Sum256(data)
	return prefix + hex.EncodeToString(hash[:])
}
