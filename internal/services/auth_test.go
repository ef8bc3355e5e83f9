package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/repos"
)

func newTestAuthService(t *testing.T) AuthService {
	t.Helper()
	store := repos.NewMemoryStore()
	return NewAuthService(nil, logger.NewNop(), store.Operators(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	op, err := auth.Register(ctx, "mario", "hunter2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if op.Name != "mario" {
		t.Fatalf("name = %q, want mario", op.Name)
	}
	if op.PasswordHash == "hunter2" || op.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}

	token, err := auth.Login(ctx, "mario", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	ident, err := auth.Verify(ctx, token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ident.OperatorID != op.ID || ident.Name != "mario" {
		t.Fatalf("identity = %+v, want operator %s", ident, op.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		operator string
		password string
		wantErr  error
	}{
		{"empty name", "", "pw", ErrInvalidCredentials},
		{"blank name", "   ", "pw", ErrInvalidCredentials},
		{"empty password", "mario", "", ErrInvalidCredentials},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := auth.Register(ctx, tc.operator, tc.password); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Register(%q, %q) = %v, want %v", tc.operator, tc.password, err, tc.wantErr)
			}
		})
	}

	if _, err := auth.Register(ctx, "mario", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := auth.Register(ctx, "mario", "other"); !errors.Is(err, ErrOperatorExists) {
		t.Fatalf("duplicate Register = %v, want ErrOperatorExists", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "mario", "hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := auth.Login(ctx, "mario", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := auth.Login(ctx, "nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown operator = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyRejectsForgedAndExpiredTokens(t *testing.T) {
	ctx := context.Background()

	store := repos.NewMemoryStore()
	auth := NewAuthService(nil, logger.NewNop(), store.Operators(), "secret-a", time.Hour)
	if _, err := auth.Register(ctx, "mario", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth.Login(ctx, "mario", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := auth.Verify(ctx, "not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("garbage token = %v, want ErrInvalidCredentials", err)
	}

	otherKey := NewAuthService(nil, logger.NewNop(), store.Operators(), "secret-b", time.Hour)
	if _, err := otherKey.Verify(ctx, token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("token signed with another key = %v, want ErrInvalidCredentials", err)
	}

	expired := NewAuthService(nil, logger.NewNop(), store.Operators(), "secret-a", -time.Minute)
	expiredToken, err := expired.Login(ctx, "mario", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := expired.Verify(ctx, expiredToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expired token = %v, want ErrInvalidCredentials", err)
	}
}
