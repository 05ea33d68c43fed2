// Package fileid derives stable identifiers from loaded file contents.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	prefix    = "rev:"
	shortHash = 12
)

// Revision returns a short content hash identifying a loaded FAQ document.
// Identical bytes always yield the same revision, so a reload of an unchanged
// file is recognizable in logs and status output.
func Revision(data []byte) string {
	hash := sha256.Sum256(data)
	return prefix + hex.EncodeToString(hash[:])[:shortHash]
}
