package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/kbukum/voicegate/auth/jwt"
)

// AdminUsername is the user name assigned to admin-key callers.
const AdminUsername = "admin"

// ErrInvalidToken is returned when no validator accepts a token.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// User is the authenticated caller.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// IsAdmin reports whether the caller authenticated with the admin key.
func (u *User) IsAdmin() bool { return u != nil && u.Role == AdminUsername }

// TokenValidator turns a bearer token into a User.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*User, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(ctx context.Context, token string) (*User, error)

func (f TokenValidatorFunc) ValidateToken(ctx context.Context, token string) (*User, error) {
	return f(ctx, token)
}

// Chain returns a validator that asks each validator in order and returns the
// first success. If all reject the token the result is ErrInvalidToken.
func Chain(validators ...TokenValidator) TokenValidator {
	return TokenValidatorFunc(func(ctx context.Context, token string) (*User, error) {
		if token == "" {
			return nil, ErrInvalidToken
		}
		for _, v := range validators {
			if v == nil {
				continue
			}
			if user, err := v.ValidateToken(ctx, token); err == nil && user != nil {
				return user, nil
			}
		}
		return nil, ErrInvalidToken
	})
}

// AdminKeyValidator accepts exactly key. An empty key accepts nothing.
func AdminKeyValidator(key string) TokenValidator {
	return TokenValidatorFunc(func(_ context.Context, token string) (*User, error) {
		if key == "" || subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			return nil, ErrInvalidToken
		}
		return &User{Username: AdminUsername, Role: AdminUsername}, nil
	})
}

// JWTValidator accepts tokens signed by svc.
func JWTValidator(svc *jwt.Service[*jwt.UserClaims]) TokenValidator {
	return TokenValidatorFunc(func(_ context.Context, token string) (*User, error) {
		claims, err := svc.Parse(token)
		if err != nil {
			return nil, err
		}
		if claims.Username == "" {
			return nil, ErrInvalidToken
		}
		// A JWT can never claim the admin role.
		role := claims.Role
		if role == AdminUsername {
			role = ""
		}
		return &User{Username: claims.Username, Role: role}, nil
	})
}
