package accounts

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"cinelist/internal/apperr"
	"cinelist/internal/database"
)

// setupTestService creates a new accounts service backed by a temp database.
func setupTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewService(database.NewUserRepository(db.Connection()))
	svc.SetHashCost(bcrypt.MinCost)
	return svc
}

func TestRegister_HashesPassword(t *testing.T) {
	svc := setupTestService(t)

	user, err := svc.Register(context.Background(), "  alice ", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected trimmed username, got %q", user.Username)
	}
	if user.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"missing username", "", "password123", ErrUsernameRequired},
		{"short username", "ab", "password123", ErrUsernameLength},
		{"long username", strings.Repeat("a", 31), "password123", ErrUsernameLength},
		{"missing password", "alice", "", ErrPasswordRequired},
		{"short password", "alice", "12345", ErrPasswordTooShort},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if apperr.KindOf(err) != apperr.Validation {
				t.Errorf("expected validation kind, got %s", apperr.KindOf(err))
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := svc.Register(ctx, "Alice", "different1")
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
	if apperr.KindOf(err) != apperr.Conflict {
		t.Errorf("expected conflict kind, got %s", apperr.KindOf(err))
	}
}

func TestAuthenticate(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.Authenticate(ctx, "ALICE", "password123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected %s, got %s", registered.ID, user.ID)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestGet(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	registered, _ := svc.Register(ctx, "alice", "password123")
	user, err := svc.Get(ctx, registered.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %q", user.Username)
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
