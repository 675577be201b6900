package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/auth"
	"github.com/sakif/movielist/internal/model"
)

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("setup: NewTokenService() error = %v", err)
	}
	users := newMockUserRepo()
	// Minimum bcrypt cost keeps the test fast.
	svc := NewAuthService(users, tokens, auth.NewPasswordServiceForTest(4), testLogger())
	return svc, users
}

func TestRegister_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	result, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User.ID == "" {
		t.Error("Register() did not assign a user ID")
	}
	if result.User.Role != model.RoleUser {
		t.Errorf("Role = %s, want USER", result.User.Role)
	}
	if result.Token == "" {
		t.Error("Register() did not issue a token")
	}
	// The hash must not be the plaintext password.
	if result.User.PasswordHash == "password123" {
		t.Error("Register() stored the plaintext password")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"username too short", "ab", "a@example.com", "password123"},
		{"username too long", strings.Repeat("a", MaxUsernameLength+1), "a@example.com", "password123"},
		{"missing email", "alice", "", "password123"},
		{"password too short", "alice", "a@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateUsernameIsConflict(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "alice", "other@example.com", "password123")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate Register() error = %v, want ErrConflict", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != registered.User.ID {
		t.Errorf("Login() user ID = %s, want %s", result.User.ID, registered.User.ID)
	}
	if result.Token == "" {
		t.Error("Login() did not issue a token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	_, err := svc.Login(context.Background(), "alice", "wrong-password")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Login() with wrong password error = %v, want ErrForbidden", err)
	}
}

// Unknown usernames and wrong passwords must be indistinguishable to the
// caller.
func TestLogin_UnknownUserSameErrorAsWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	_, unknownErr := svc.Login(context.Background(), "ghost", "password123")
	_, wrongErr := svc.Login(context.Background(), "alice", "wrong-password")

	if !errors.Is(unknownErr, apperror.ErrForbidden) || !errors.Is(wrongErr, apperror.ErrForbidden) {
		t.Fatalf("errors = (%v, %v), want both ErrForbidden", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("error messages differ: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}
