package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer computes HMAC-SHA-256 signatures keyed by a SigningKey.
type Signer struct {
	key SigningKey
}

// NewSigner fails when the key is empty or the hash is not linked into
// the binary; both are startup errors.
func NewSigner(key SigningKey) (*Signer, error) {
	if len(key) == 0 {
		return nil, ErrEmptySigningKey
	}
	s := &Signer{key: key}
	if _, err := s.Sign(nil); err != nil {
		return nil, fmt.Errorf("hmac-sha256 unavailable: %w", err)
	}
	return s, nil
}

// Sign is deterministic: the same payload always yields the same signature.
func (s *Signer) Sign(payload []byte) ([]byte, error) {
	return jwt.SigningMethodHS256.Sign(string(payload), []byte(s.key))
}

// Valid reports whether sig is the signature of payload. The comparison
// is constant time.
func (s *Signer) Valid(payload, sig []byte) bool {
	return jwt.SigningMethodHS256.Verify(string(payload), sig, []byte(s.key)) == nil
}
