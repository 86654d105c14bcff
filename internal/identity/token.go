package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// tokenBytes is the entropy of a guest magic-link token. 16 random
// bytes (128 bits) hex-encode to the 32-character tokens the join links
// carry.
const tokenBytes = 16

// TokenMinter mints guest magic-link tokens from an injected random
// source, so tests can run deterministically.
type TokenMinter struct {
	rand io.Reader
}

// NewTokenMinter creates a TokenMinter. A nil source defaults to
// crypto/rand.Reader; anything else must still be cryptographically
// secure in production, since the token is the guest's only credential.
func NewTokenMinter(source io.Reader) *TokenMinter {
	if source == nil {
		source = rand.Reader
	}
	return &TokenMinter{rand: source}
}

// Mint returns a new 32-character hex token.
func (m *TokenMinter) Mint() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(m.rand, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
