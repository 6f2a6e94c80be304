package sentiment

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 digest of the normalised subject and body.
// Emails differing only in case or whitespace share a fingerprint.
func Fingerprint(subject, body string) string {
	sum := sha256.Sum256([]byte(Normalize(subject) + "\n" + Normalize(body)))
	return hex.EncodeToString(sum[:])
}
