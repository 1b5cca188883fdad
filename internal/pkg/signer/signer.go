// Package signer turns email addresses into URL-safe, tamper-evident tokens
// for subscription management links and back.
package signer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const issuer = "newsletter"

var (
	// ErrInvalidSignature is returned for any malformed or altered token.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrExpired is returned when a token is older than the max age.
	// It also matches ErrInvalidSignature via errors.Is.
	ErrExpired = fmt.Errorf("%w: token expired", ErrInvalidSignature)
)

// Signer signs with HS256 under a single process-wide secret.
type Signer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

type Option func(*Signer)

// WithMaxAge makes tokens expire d after signing. Zero disables expiry and
// keeps Sign deterministic.
func WithMaxAge(d time.Duration) Option {
	return func(s *Signer) { s.maxAge = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

type claims struct {
	Email string `json:"em"`
	jwtlib.RegisteredClaims
}

// New returns a Signer keyed by secret. Changing the secret invalidates
// every outstanding link.
func New(secret string, opts ...Option) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signer: secret is empty")
	}
	s := &Signer{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxAge < 0 {
		return nil, errors.New("signer: max age must not be negative")
	}
	return s, nil
}

// Sign returns the token for email.
func (s *Signer) Sign(email string) (string, error) {
	c := claims{
		Email:            email,
		RegisteredClaims: jwtlib.RegisteredClaims{Issuer: issuer},
	}
	if s.maxAge > 0 {
		now := s.now()
		c.IssuedAt = jwtlib.NewNumericDate(now)
		c.ExpiresAt = jwtlib.NewNumericDate(now.Add(s.maxAge))
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(s.secret)
}

// Unsign verifies token and returns the email it carries.
func (s *Signer) Unsign(token string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &claims{}, func(*jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		// Each signature has exactly one accepted base64url spelling.
		jwtlib.WithStrictDecoding(),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Email == "" {
		return "", ErrInvalidSignature
	}
	// Tokens minted before a max age was configured carry no iat.
	if s.maxAge > 0 {
		if c.IssuedAt == nil || s.now().Sub(c.IssuedAt.Time) > s.maxAge {
			return "", ErrExpired
		}
	}
	return c.Email, nil
}
