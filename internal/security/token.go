package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	RefreshTokenBytes = 64
	RefreshTokenTTL   = 90 * 24 * time.Hour
)

// NewRefreshToken returns 64 random bytes, hex encoded.
func NewRefreshToken() (string, error) {
	b := make([]byte, RefreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RefreshTokenDigest shrinks a raw refresh token below bcrypt's 72-byte input
// limit. The digest, not the raw token, is what gets hashed and verified.
func RefreshTokenDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
