package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/user/entity"
)

const testSecret = "test-signing-secret"

var testEpoch = time.Unix(1_760_000_000, 0)

// MockDirectory is a mock implementation of Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetOrCreate(ctx context.Context, email string, displayName *string) (*entity.User, error) {
	args := m.Called(ctx, email, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func strptr(s string) *string { return &s }

// namePtr matches a *string argument by value; nil matches nil.
func namePtr(want *string) any {
	return mock.MatchedBy(func(got *string) bool {
		if want == nil || got == nil {
			return want == nil && got == nil
		}
		return *want == *got
	})
}

func newTestSigner(t *testing.T, secret string) *Signer {
	t.Helper()
	key, err := NewSigningKey([]byte(secret))
	require.NoError(t, err)
	s, err := NewSigner(key)
	require.NoError(t, err)
	return s
}

func newTestCodec(t *testing.T, ttl int64) (*Codec, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testEpoch)
	c, err := NewCodec(newTestSigner(t, testSecret), ttl, clock)
	require.NoError(t, err)
	return c, clock
}

// signRaw builds a token around an arbitrary payload, bypassing Issue.
func signRaw(t *testing.T, s *Signer, payload string) string {
	t.Helper()
	sig, err := s.Sign([]byte(payload))
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + base64.RawURLEncoding.EncodeToString(sig)
}

// externalToken builds an unsigned id_token-shaped string.
func externalToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	body, err := json.Marshal(claims)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + ".c2lnbmF0dXJl"
}
