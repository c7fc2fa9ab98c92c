package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 32 // 256 bits

var tokenLength = base64.RawURLEncoding.EncodedLen(tokenBytes)

// GenerateToken returns a cryptographically random token.
func GenerateToken() (Token, error) {
	b := make([]byte, tokenBytes)

	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate token: %w", err)
	}

	return Token(base64.RawURLEncoding.EncodeToString(b)), nil
}

// WellFormed reports whether t has the shape of a generated token.
func (t Token) WellFormed() bool {
	if len(t) != tokenLength {
		return false
	}

	_, err := base64.RawURLEncoding.DecodeString(string(t))

	return err == nil
}
