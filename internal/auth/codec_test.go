package auth

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	cases := []struct {
		name        string
		email       string
		displayName *string
		ttl         int64
	}{
		{"with name", "a@x.com", strptr("Alice"), 3600},
		{"without name", "b@y.com", nil, 3600},
		{"zero ttl", "c@z.com", strptr("Carol"), 0},
		{"unicode name", "d@x.com", strptr("김도윤 🎵"), 60},
		{"name with separator", "e@x.com", strptr("Eve|Ops|Team"), 60},
		{"name with dots", "f.g@x.co.kr", strptr("F. G."), 60},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codec, _ := newTestCodec(t, DefaultTokenTTLSeconds)
			token, err := codec.IssueWithTTL(tc.email, tc.displayName, tc.ttl)
			require.NoError(t, err)

			claims, ok := codec.Verify(token)
			require.True(t, ok)
			assert.Equal(t, tc.email, claims.Email)
			assert.Equal(t, tc.displayName, claims.DisplayName)
			assert.Equal(t, testEpoch.Unix()+tc.ttl, claims.ExpiresAt)
		})
	}
}

func TestIssueUsesConfiguredTTL(t *testing.T) {
	codec, _ := newTestCodec(t, 120)
	assert.Equal(t, int64(120), codec.TTLSeconds())

	token, err := codec.Issue("a@x.com", nil)
	require.NoError(t, err)
	claims, ok := codec.Verify(token)
	require.True(t, ok)
	assert.Equal(t, testEpoch.Unix()+120, claims.ExpiresAt)
}

func TestEmptyDisplayNameBecomesAbsent(t *testing.T) {
	codec, _ := newTestCodec(t, 60)
	token, err := codec.Issue("a@x.com", strptr(""))
	require.NoError(t, err)
	claims, ok := codec.Verify(token)
	require.True(t, ok)
	assert.Nil(t, claims.DisplayName)
}

func TestTokenWireFormat(t *testing.T) {
	codec, _ := newTestCodec(t, 60)
	token, err := codec.Issue("a@x.com", strptr("Alice"))
	require.NoError(t, err)

	assert.NotContains(t, token, "=")
	parts := strings.Split(token, ".")
	require.Len(t, parts, 2)

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.Equal(t, "a@x.com|Alice|"+strconv.FormatInt(testEpoch.Unix()+60, 10), string(payload))

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Len(t, sig, 32)
}

func TestIssueIsDeterministicForSameInstant(t *testing.T) {
	codec, _ := newTestCodec(t, 60)
	a, err := codec.Issue("a@x.com", strptr("Alice"))
	require.NoError(t, err)
	b, err := codec.Issue("a@x.com", strptr("Alice"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIssueRejectsInvalidInput(t *testing.T) {
	codec, _ := newTestCodec(t, 60)

	_, err := codec.Issue("", nil)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = codec.Issue("a|b@x.com", nil)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = codec.IssueWithTTL("a@x.com", nil, -1)
	assert.ErrorIs(t, err, ErrInvalidTokenTTL)

	_, err = codec.IssueWithTTL("a@x.com", nil, MaxTokenTTLSeconds+1)
	assert.ErrorIs(t, err, ErrInvalidTokenTTL)

	_, err = codec.IssueWithTTL("a@x.com", nil, math.MaxInt64)
	assert.ErrorIs(t, err, ErrInvalidTokenTTL)
}

func TestIssueMaxTTLVerifies(t *testing.T) {
	codec, _ := newTestCodec(t, MaxTokenTTLSeconds)
	token, err := codec.Issue("a@x.com", nil)
	require.NoError(t, err)

	claims, ok := codec.Verify(token)
	require.True(t, ok)
	assert.Equal(t, testEpoch.Unix()+MaxTokenTTLSeconds, claims.ExpiresAt)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	codec, clock := newTestCodec(t, 0)
	token, err := codec.Issue("a@x.com", strptr("Alice"))
	require.NoError(t, err)

	// expiresAt == now
	_, ok := codec.Verify(token)
	assert.True(t, ok)

	// expiresAt == now - 1
	clock.Advance(time.Second)
	_, ok = codec.Verify(token)
	assert.False(t, ok)
}

func TestVerifyExpiresAfterTTL(t *testing.T) {
	codec, clock := newTestCodec(t, 10)
	token, err := codec.Issue("a@x.com", nil)
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	_, ok := codec.Verify(token)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = codec.Verify(token)
	assert.False(t, ok)
}

func TestVerifyTamperedToken(t *testing.T) {
	codec, _ := newTestCodec(t, 60)
	token, err := codec.Issue("a@x.com", strptr("Alice"))
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, ok := codec.Verify(tampered)
		assert.False(t, ok, "tampered at index %d: %s", i, tampered)
	}
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	codec, clock := newTestCodec(t, 60)
	other, err := NewCodec(newTestSigner(t, "another-secret"), 60, clock)
	require.NoError(t, err)

	token, err := other.Issue("a@x.com", nil)
	require.NoError(t, err)
	_, ok := codec.Verify(token)
	assert.False(t, ok)
}

func TestVerifyMalformed(t *testing.T) {
	codec, _ := newTestCodec(t, 60)
	signer := newTestSigner(t, testSecret)
	future := strconv.FormatInt(testEpoch.Unix()+60, 10)

	valid, err := codec.Issue("a@x.com", nil)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")

	cases := map[string]string{
		"empty":               "",
		"single segment":      "YUB4LmNvbXx8MTc2MDAwMDA2MA",
		"three segments":      valid + ".extra",
		"empty segments":      ".",
		"non base64":          "!!!.###",
		"padded payload":      parts[0] + "==." + parts[1],
		"two payload fields":  signRaw(t, signer, "a@x.com|"+future),
		"one payload field":   signRaw(t, signer, "a@x.com"),
		"non integer expiry":  signRaw(t, signer, "a@x.com|Alice|tomorrow"),
		"empty expiry":        signRaw(t, signer, "a@x.com|Alice|"),
		"signature truncated": parts[0] + "." + parts[1][:10],
		"signature swapped":   parts[1] + "." + parts[0],
		"newline in payload":  parts[0][:5] + "\n" + parts[0][5:] + "." + parts[1],
		"crlf in signature":   parts[0] + "." + parts[1][:5] + "\r\n" + parts[1][5:],
		"trailing newline":    valid + "\n",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				claims, ok := codec.Verify(token)
				assert.False(t, ok)
				assert.Equal(t, Claims{}, claims)
			})
		})
	}
}

func TestVerifyAcceptsRawSignedPayload(t *testing.T) {
	codec, _ := newTestCodec(t, 60)
	signer := newTestSigner(t, testSecret)
	future := strconv.FormatInt(testEpoch.Unix()+60, 10)

	claims, ok := codec.Verify(signRaw(t, signer, "a@x.com||"+future))
	require.True(t, ok)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Nil(t, claims.DisplayName)
}

func TestNewCodecValidation(t *testing.T) {
	_, err := NewCodec(nil, 60, nil)
	assert.ErrorIs(t, err, ErrEmptySigningKey)

	_, err = NewCodec(newTestSigner(t, testSecret), -5, nil)
	assert.ErrorIs(t, err, ErrInvalidTokenTTL)

	_, err = NewCodec(newTestSigner(t, testSecret), math.MaxInt64, nil)
	assert.ErrorIs(t, err, ErrInvalidTokenTTL)

	c, err := NewCodec(newTestSigner(t, testSecret), 60, nil)
	require.NoError(t, err)
	token, err := c.Issue("a@x.com", nil)
	require.NoError(t, err)
	_, ok := c.Verify(token)
	assert.True(t, ok)
}
