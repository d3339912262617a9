package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/user/entity"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderUserEmail     = "X-User-Email"
	HeaderUserName      = "X-User-Name"

	bearerPrefix = "Bearer "
)

// Directory is the user store the resolver hands identities to.
type Directory interface {
	GetOrCreate(ctx context.Context, email string, displayName *string) (*entity.User, error)
}

// Resolver determines who a request is for. It tries, in order, a
// self-issued bearer token, the X-User-Email / X-User-Name headers, and
// finally the guest identity.
type Resolver struct {
	codec   *Codec
	dir     Directory
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
}

func NewResolver(codec *Codec, dir Directory, m *metrics.Metrics, logger *zap.SugaredLogger) *Resolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{codec: codec, dir: dir, metrics: m, logger: logger}
}

// Resolve reads the request headers and returns the identity with the
// source its email came from. It does not touch the directory.
func (res *Resolver) Resolve(r *http.Request) (Identity, Source) {
	var (
		email       string
		displayName *string
		source      Source
	)

	if h := r.Header.Get(HeaderAuthorization); strings.HasPrefix(h, bearerPrefix) {
		if claims, ok := res.codec.Verify(h[len(bearerPrefix):]); ok {
			email = claims.Email
			displayName = claims.DisplayName
			source = SourceToken
		}
	}

	if isBlank(email) {
		email = r.Header.Get(HeaderUserEmail)
		source = SourceHeader
	}
	if displayName == nil || isBlank(*displayName) {
		if v := r.Header.Get(HeaderUserName); v != "" {
			displayName = &v
		}
	}
	if isBlank(email) {
		email = GuestEmail
		source = SourceGuest
	}
	if displayName != nil && isBlank(*displayName) {
		displayName = nil
	}
	return Identity{Email: email, DisplayName: displayName}, source
}

// Middleware resolves the identity, gets or creates the matching user
// and stores it in the request context for downstream handlers.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, source := res.Resolve(r)
		res.metrics.RecordIdentityResolved(string(source))

		u, err := res.dir.GetOrCreate(r.Context(), id.Email, id.DisplayName)
		if err != nil {
			res.logger.Errorw("resolve user failed", "source", source, "path", r.URL.Path, "err", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "failed to resolve user"})
			return
		}
		res.logger.Debugw("identity resolved", "source", source, "user_id", u.ID)
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
