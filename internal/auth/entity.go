package auth

import "errors"

// GuestEmail is used when no identity source yields an email.
const GuestEmail = "guest@example.com"

var (
	ErrEmptySigningKey    = errors.New("token secret must not be empty")
	ErrInvalidTokenTTL    = errors.New("token ttl must be a non-negative integer")
	ErrInvalidEmail       = errors.New("token email must be non-empty and must not contain '|'")
	ErrLoginEmailRequired = errors.New("email is required for google login")
)

// SigningKey is the HMAC secret. It is copied on construction and
// never modified afterwards.
type SigningKey []byte

func NewSigningKey(secret []byte) (SigningKey, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySigningKey
	}
	k := make(SigningKey, len(secret))
	copy(k, secret)
	return k, nil
}

// Claims are the fields carried by a self-issued token.
type Claims struct {
	Email       string
	DisplayName *string
	ExpiresAt   int64
}

// ExternalClaims are read from a third-party identity token without
// checking its signature. Nil fields mean "no information".
type ExternalClaims struct {
	Email       *string
	DisplayName *string
}

// Identity is the per-request result of resolution. Email is always set.
type Identity struct {
	Email       string
	DisplayName *string
}

// Source names where an Identity's email came from.
type Source string

const (
	SourceToken  Source = "token"
	SourceHeader Source = "header"
	SourceGuest  Source = "guest"
)
