package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// NewOneTimeToken returns 32 random bytes hex encoded, used for email
// verification and password reset links.
func NewOneTimeToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
