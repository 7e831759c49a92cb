package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/voicegate/auth/jwt"
)

func TestChain(t *testing.T) {
	cfg := jwt.Config{Secret: "s3cret"}
	svc, err := jwt.NewService(&cfg, func() *jwt.UserClaims { return &jwt.UserClaims{} })
	if err != nil {
		t.Fatal(err)
	}
	userToken, _ := svc.Issue(&jwt.UserClaims{Username: "bob"})
	escalated, _ := svc.Issue(&jwt.UserClaims{Username: "mallory", Role: AdminUsername})
	anonymous, _ := svc.Issue(&jwt.UserClaims{})

	v := Chain(AdminKeyValidator("k3y0000000000"), JWTValidator(svc))

	tests := []struct {
		name     string
		token    string
		wantUser string
		wantErr  bool
		admin    bool
	}{
		{name: "admin key", token: "k3y0000000000", wantUser: "admin", admin: true},
		{name: "jwt", token: userToken, wantUser: "bob"},
		{name: "jwt cannot claim admin", token: escalated, wantUser: "mallory"},
		{name: "jwt without username", token: anonymous, wantErr: true},
		{name: "near miss", token: "k3y000000000", wantErr: true},
		{name: "empty", token: "", wantErr: true},
		{name: "garbage", token: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := v.ValidateToken(context.Background(), tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("err = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if user.Username != tt.wantUser || user.IsAdmin() != tt.admin {
				t.Errorf("user = %+v", user)
			}
		})
	}
}

func TestAdminKeyValidatorEmptyKey(t *testing.T) {
	if _, err := AdminKeyValidator("").ValidateToken(context.Background(), ""); err == nil {
		t.Error("empty key accepted an empty token")
	}
}
