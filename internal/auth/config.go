package auth

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultTokenTTLSeconds is one day.
const DefaultTokenTTLSeconds int64 = 86400

// MaxTokenTTLSeconds is ten years.
const MaxTokenTTLSeconds int64 = 10 * 365 * 86400

// Config is read once at startup and never mutated.
type Config struct {
	Secret          string
	TokenTTLSeconds int64
}

// ConfigFromEnv reads APP_AUTH_SECRET and APP_AUTH_TOKEN_TTL_SECONDS.
// The returned config has already been validated.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Secret:          os.Getenv("APP_AUTH_SECRET"),
		TokenTTLSeconds: DefaultTokenTTLSeconds,
	}
	if raw := strings.TrimSpace(os.Getenv("APP_AUTH_TOKEN_TTL_SECONDS")); raw != "" {
		ttl, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidTokenTTL, raw)
		}
		cfg.TokenTTLSeconds = ttl
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Secret == "" {
		return ErrEmptySigningKey
	}
	if c.TokenTTLSeconds < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidTokenTTL, c.TokenTTLSeconds)
	}
	if c.TokenTTLSeconds > MaxTokenTTLSeconds {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidTokenTTL, c.TokenTTLSeconds, MaxTokenTTLSeconds)
	}
	return nil
}

// SigningKey returns the secret as key bytes.
func (c Config) SigningKey() (SigningKey, error) {
	return NewSigningKey([]byte(c.Secret))
}
