package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/metrics"
)

// LoginRequest is the body of POST /api/auth/google.
type LoginRequest struct {
	Token       string  `json:"token"`
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
}

// Validate requires a non-blank token.
func (r LoginRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required.Error("token is required")),
	)
}

// LoginResponse carries the issued token and the stored identity.
type LoginResponse struct {
	Token       string  `json:"token"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
}

// Service exchanges an external identity token for a self-issued one.
type Service struct {
	codec    *Codec
	external *ExternalReader
	dir      Directory
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
}

func NewService(codec *Codec, external *ExternalReader, dir Directory, m *metrics.Metrics, logger *zap.SugaredLogger) *Service {
	if external == nil {
		external = NewExternalReader()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{codec: codec, external: external, dir: dir, metrics: m, logger: logger}
}

// Login prefers non-blank client-supplied email and display name and
// falls back to the claims of the unverified external token. It fails
// with ErrLoginEmailRequired when neither yields an email.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	ext, ok := s.external.ReadUnverified(req.Token)
	if !ok {
		s.logger.Debugw("external token unreadable", "token_len", len(req.Token))
	}

	email := firstNonBlank(req.Email, ext.Email)
	if email == nil {
		s.metrics.RecordLogin(metrics.LoginInvalid)
		return nil, ErrLoginEmailRequired
	}
	if strings.Contains(*email, fieldSep) {
		s.metrics.RecordLogin(metrics.LoginInvalid)
		return nil, ErrInvalidEmail
	}
	displayName := firstNonBlank(req.DisplayName, ext.DisplayName)

	u, err := s.dir.GetOrCreate(ctx, *email, displayName)
	if err != nil {
		s.metrics.RecordLogin(metrics.LoginError)
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	token, err := s.codec.Issue(u.Email, u.DisplayName)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			s.metrics.RecordLogin(metrics.LoginInvalid)
		} else {
			s.metrics.RecordLogin(metrics.LoginError)
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.RecordLogin(metrics.LoginSuccess)
	s.logger.Infow("login succeeded", "user_id", u.ID, "external_claims", ok)
	return &LoginResponse{Token: token, Email: u.Email, DisplayName: u.DisplayName}, nil
}

func firstNonBlank(first, second *string) *string {
	if first != nil && !isBlank(*first) {
		return first
	}
	if second != nil && !isBlank(*second) {
		return second
	}
	return nil
}
