package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/pkg/utilities"
)

// Repository is the subset of UserRepo the service depends on.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Upsert(ctx context.Context, u *entity.User) (*entity.User, error)
}

var ErrEmailRequired = errors.New("email required")

// UserService is the user directory: it maps an email (and optional
// display name) to a persisted user.
type UserService struct {
	repo   Repository
	newID  func() string
	logger *zap.SugaredLogger
}

func NewUserService(db *sqlx.DB, r Repository, logger *zap.SugaredLogger) *UserService {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, newID: utilities.NewSnowflakeID, logger: logger}
}

// GetOrCreate returns the user for email, creating it on first sight.
// It is idempotent per email. A non-blank displayName replaces the
// stored one; an absent or blank one leaves it untouched, so an
// existing user is returned without a write.
func (s *UserService) GetOrCreate(ctx context.Context, email string, displayName *string) (*entity.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	name := normalizeName(displayName)

	if name == nil {
		u, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			s.logger.Debugw("user found", "user_id", u.ID)
			return u, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("get user: %w", err)
		}
	}

	u, err := s.repo.Upsert(ctx, &entity.User{ID: s.newID(), Email: email, DisplayName: name})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	s.logger.Debugw("user resolved", "user_id", u.ID, "has_display_name", u.DisplayName != nil)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	n := strings.TrimSpace(*name)
	if n == "" {
		return nil
	}
	return &n
}
