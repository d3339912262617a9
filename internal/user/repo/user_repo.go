package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-auth-go-stdlib/internal/user/entity"
)

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id varchar(32) PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  display_name TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// GetByEmail returns a user matched by email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, email, display_name, created_at, updated_at FROM users WHERE email=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert inserts u keyed by email. When the email already exists the
// stored row wins, except that a non-NULL display_name replaces the
// stored one. The resulting row is returned.
func (r *UserRepo) Upsert(ctx context.Context, u *entity.User) (*entity.User, error) {
	const q = `INSERT INTO users (id, email, display_name) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		  SET display_name = COALESCE(EXCLUDED.display_name, users.display_name),
		      updated_at = CASE WHEN EXCLUDED.display_name IS DISTINCT FROM users.display_name
		                        AND EXCLUDED.display_name IS NOT NULL
		                        THEN NOW() ELSE users.updated_at END
		RETURNING id, email, display_name, created_at, updated_at`
	var out entity.User
	if err := r.db.GetContext(ctx, &out, q, u.ID, u.Email, u.DisplayName); err != nil {
		return nil, err
	}
	return &out, nil
}
