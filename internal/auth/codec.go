package auth

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
)

const (
	segmentSep = "."
	fieldSep   = "|"
)

// b64 is unpadded base64url in strict mode. The decoder still skips CR
// and LF, so Verify rejects those before decoding; with that every token
// has exactly one accepted spelling.
var b64 = base64.RawURLEncoding.Strict()

// Codec issues and verifies tokens of the form
// base64url(email|displayName|expiresAt) "." base64url(hmac).
type Codec struct {
	signer     *Signer
	ttlSeconds int64
	clock      clockwork.Clock
}

// NewCodec builds a codec that issues tokens valid for ttlSeconds. A nil
// clock means the real clock.
func NewCodec(signer *Signer, ttlSeconds int64, clock clockwork.Clock) (*Codec, error) {
	if signer == nil {
		return nil, ErrEmptySigningKey
	}
	if ttlSeconds < 0 || ttlSeconds > MaxTokenTTLSeconds {
		return nil, ErrInvalidTokenTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Codec{signer: signer, ttlSeconds: ttlSeconds, clock: clock}, nil
}

// TTLSeconds returns the configured lifetime of issued tokens.
func (c *Codec) TTLSeconds() int64 { return c.ttlSeconds }

// Issue signs a token for email that expires after the configured TTL.
func (c *Codec) Issue(email string, displayName *string) (string, error) {
	return c.IssueWithTTL(email, displayName, c.ttlSeconds)
}

// IssueWithTTL signs a token expiring ttlSeconds from now.
func (c *Codec) IssueWithTTL(email string, displayName *string, ttlSeconds int64) (string, error) {
	if email == "" || strings.Contains(email, fieldSep) {
		return "", ErrInvalidEmail
	}
	if ttlSeconds < 0 || ttlSeconds > MaxTokenTTLSeconds {
		return "", ErrInvalidTokenTTL
	}
	now := c.clock.Now().Unix()
	if ttlSeconds > math.MaxInt64-now {
		return "", ErrInvalidTokenTTL
	}
	name := ""
	if displayName != nil {
		name = *displayName
	}
	expiresAt := now + ttlSeconds
	payload := []byte(email + fieldSep + name + fieldSep + strconv.FormatInt(expiresAt, 10))

	sig, err := c.signer.Sign(payload)
	if err != nil {
		return "", err
	}
	return b64.EncodeToString(payload) + segmentSep + b64.EncodeToString(sig), nil
}

// Verify returns the token's claims, or false for any token that is
// malformed, tampered with or expired. It never panics and has no side
// effects. A token whose expiry equals the current second is still valid.
func (c *Codec) Verify(token string) (Claims, bool) {
	if token == "" || strings.ContainsAny(token, "\r\n") {
		return Claims{}, false
	}
	parts := strings.Split(token, segmentSep)
	if len(parts) != 2 {
		return Claims{}, false
	}
	payload, err := b64.DecodeString(parts[0])
	if err != nil {
		return Claims{}, false
	}
	fields, ok := splitPayload(string(payload))
	if !ok {
		return Claims{}, false
	}
	sig, err := b64.DecodeString(parts[1])
	if err != nil || !c.signer.Valid(payload, sig) {
		return Claims{}, false
	}
	expiresAt, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Claims{}, false
	}
	if c.clock.Now().Unix() > expiresAt {
		return Claims{}, false
	}

	claims := Claims{Email: fields[0], ExpiresAt: expiresAt}
	if fields[1] != "" {
		name := fields[1]
		claims.DisplayName = &name
	}
	return claims, true
}

// splitPayload cuts the payload into email, display name and expiry.
// Email never contains the separator and expiry is decimal, so the
// first and last separators delimit the fields and any separator in
// between belongs to the display name.
func splitPayload(payload string) ([3]string, bool) {
	first := strings.Index(payload, fieldSep)
	last := strings.LastIndex(payload, fieldSep)
	if first < 0 || first == last {
		return [3]string{}, false
	}
	return [3]string{payload[:first], payload[first+1 : last], payload[last+1:]}, true
}
