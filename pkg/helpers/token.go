package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// Verification token codec. Raw tokens leave the process only inside email
// links; the database sees nothing but the SHA-256 digest.

const rawTokenBytes = 32

// GenerateToken returns a 256-bit random token as a 64-char hex string.
func GenerateToken() (string, error) {
	b := make([]byte, rawTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the hex SHA-256 digest of a raw token. All stored-token
// comparisons go through this; raw tokens are never persisted.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
