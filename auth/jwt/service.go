// Package jwt signs and parses HMAC JWTs for a caller-defined claims type.
//
//	svc, err := jwt.NewService(&cfg, func() *jwt.UserClaims { return &jwt.UserClaims{} })
//	token, err := svc.Issue(&jwt.UserClaims{Username: "bob"})
//	claims, err := svc.Parse(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Defaulter is implemented by claims that accept issue-time defaults.
type Defaulter interface {
	SetDefaults(now time.Time, ttl time.Duration, issuer string)
}

// Service signs and parses tokens carrying claims of type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	now      func() time.Time
}

// NewService validates cfg. newEmpty returns a fresh T to parse into.
func NewService[T gojwt.Claims](cfg *Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service[T]{cfg: *cfg, newEmpty: newEmpty, now: time.Now}, nil
}

// Config returns the effective configuration.
func (s *Service[T]) Config() Config { return s.cfg }

// Sign signs claims as they are.
func (s *Service[T]) Sign(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Issue fills issue time, expiry and issuer through Defaulter, then signs.
func (s *Service[T]) Issue(claims T) (string, error) {
	if d, ok := any(claims).(Defaulter); ok {
		d.SetDefaults(s.now(), s.cfg.TokenTTL, s.cfg.Issuer)
	}
	return s.Sign(claims)
}

// Parse verifies the signature, algorithm, expiry and issuer.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	token, err := gojwt.ParseWithClaims(tokenString, s.newEmpty(), func(*gojwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return zero, fmt.Errorf("jwt: parse token: %w", err)
	}
	if !token.Valid {
		return zero, errors.New("jwt: invalid token")
	}
	claims, ok := token.Claims.(T)
	if !ok {
		return zero, errors.New("jwt: unexpected claims type")
	}
	return claims, nil
}

// UserClaims identifies an API user.
type UserClaims struct {
	gojwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// SetDefaults fills unset time claims and the subject.
func (c *UserClaims) SetDefaults(now time.Time, ttl time.Duration, issuer string) {
	if c.IssuedAt == nil {
		c.IssuedAt = gojwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil && ttl > 0 {
		c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
	if c.Issuer == "" {
		c.Issuer = issuer
	}
	if c.Subject == "" {
		c.Subject = c.Username
	}
}
