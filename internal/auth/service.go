package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/apperr"
)

// DefaultTTL is the lifetime of an access token.
const DefaultTTL = 24 * time.Hour

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// ConfigFromEnv reads JWT_SECRET_KEY, JWT_ISSUER and JWT_TTL.
func ConfigFromEnv() Config {
	ttl := DefaultTTL
	if v := os.Getenv("JWT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "service-bookshelf"
	}
	return Config{Secret: os.Getenv("JWT_SECRET_KEY"), Issuer: issuer, TTL: ttl}
}

// TokenService issues and verifies HS256 bearer tokens whose subject is the
// account email.
type TokenService struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	// Ephemeral is set when no secret was configured and a random key was
	// generated; tokens then do not survive a restart.
	Ephemeral bool
}

func NewTokenService(cfg Config) (*TokenService, error) {
	s := &TokenService{issuer: cfg.Issuer, ttl: cfg.TTL, now: time.Now}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if cfg.Secret != "" {
		s.key = []byte(cfg.Secret)
		return s, nil
	}
	s.key = make([]byte, 32)
	if _, err := rand.Read(s.key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	s.Ephemeral = true
	return s, nil
}

// SetClock replaces the time source used for iat/exp and validation.
func (s *TokenService) SetClock(now func() time.Time) { s.now = now }

// TTL returns the token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for subject valid for the configured TTL.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Authenticate verifies token and returns its subject. Every failure is an
// apperr auth error.
func (s *TokenService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", apperr.Auth("Missing Authorization Header", nil)
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.Auth("Token has expired", err)
		}
		return "", apperr.Auth("Invalid token", err)
	}
	if claims.Subject == "" {
		return "", apperr.Auth("Invalid token", errors.New("empty subject"))
	}
	return claims.Subject, nil
}
