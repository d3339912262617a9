package auth

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ExternalReader extracts email and name claims from a third-party
// identity token (for example a Google id_token) WITHOUT verifying its
// signature. It trusts whatever channel delivered the token; callers
// that need issuer or audience guarantees must verify the token first.
type ExternalReader struct {
	parser *jwt.Parser
}

func NewExternalReader() *ExternalReader {
	return &ExternalReader{parser: jwt.NewParser(jwt.WithPaddingAllowed())}
}

// ReadUnverified decodes the second dot-separated segment as a JSON
// object. It returns false when the token cannot be decoded or carries
// no string "email" claim. "name" is optional.
func (r *ExternalReader) ReadUnverified(token string) (ExternalClaims, bool) {
	if strings.TrimSpace(token) == "" {
		return ExternalClaims{}, false
	}
	parts := strings.Split(token, segmentSep)
	if len(parts) < 2 {
		return ExternalClaims{}, false
	}
	raw, err := r.parser.DecodeSegment(parts[1])
	if err != nil {
		return ExternalClaims{}, false
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return ExternalClaims{}, false
	}
	email, ok := claims["email"].(string)
	if !ok {
		return ExternalClaims{}, false
	}
	out := ExternalClaims{Email: &email}
	if name, ok := claims["name"].(string); ok {
		out.DisplayName = &name
	}
	return out, true
}
